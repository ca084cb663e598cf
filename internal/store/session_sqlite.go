package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// SQLiteSessionStore keeps session snapshots in the sessions table.
type SQLiteSessionStore struct {
	db *sql.DB
}

var _ SessionStore = (*SQLiteSessionStore)(nil)

var summaryColumns = []string{
	"id", "completed", "question_count", "final_score", "role_level", "created_at", "updated_at",
}

func (s *SQLiteSessionStore) Save(ctx context.Context, rec *SessionRecord) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	stampRecord(rec)

	query, args := builder().Insert(tableSessions).
		Columns(append(summaryColumns, "data")...).
		Values(rec.ID, rec.Completed, rec.QuestionCount, rec.FinalScore, rec.RoleLevel,
			rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(), []byte(rec.Data)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("completed")
				u.SetExcluded("question_count")
				u.SetExcluded("final_score")
				u.SetExcluded("role_level")
				u.SetExcluded("updated_at")
				u.SetExcluded("data")
			}),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteSessionStore) Load(ctx context.Context, id string) (*SessionRecord, error) {
	query, args := builder().Select(append(summaryColumns, "data")...).
		From(entsql.Table(tableSessions)).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		rec              SessionRecord
		created, updated int64
		data             []byte
	)
	if err := rows.Scan(&rec.ID, &rec.Completed, &rec.QuestionCount, &rec.FinalScore,
		&rec.RoleLevel, &created, &updated, &data); err != nil {
		return nil, fmt.Errorf("scan session %s: %w", id, err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	rec.Data = data
	return &rec, nil
}

func (s *SQLiteSessionStore) List(ctx context.Context) ([]SessionSummary, error) {
	query, args := builder().Select(summaryColumns...).
		From(entsql.Table(tableSessions)).
		OrderBy(entsql.Desc("updated_at")).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum              SessionSummary
			created, updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Completed, &sum.QuestionCount, &sum.FinalScore,
			&sum.RoleLevel, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(created).UTC()
		sum.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	query, args := builder().Delete(tableSessions).
		Where(entsql.EQ("id", id)).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// stampRecord fills in missing timestamps before a save.
func stampRecord(rec *SessionRecord) {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
}
