package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/llm"
)

const resume = `Jane Doe
Senior Software Engineer with 8 years of experience building React
frontends and Python services on AWS. Comfortable with PostgreSQL, Redis and
Docker.`

func TestExtract(t *testing.T) {
	p := Extract(resume)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "senior", p.RoleLevel)
	assert.Equal(t, 8, p.YearsExperience)
	assert.Subset(t, p.Skills, []string{"python", "react", "aws", "postgresql", "redis", "docker"})
	assert.Contains(t, p.Topics, "react")
	assert.Contains(t, p.Topics, "python")
	assert.NotContains(t, p.Topics, "general")
	assert.Equal(t, adaptive.LevelHard, p.StartLevel())
}

func TestExtract_RoleLevel(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"explicit junior", "Junior developer looking for a first role", "junior"},
		{"intern", "Software intern at a startup", "junior"},
		{"explicit mid", "Mid-level backend engineer", "mid"},
		{"years senior", "Backend engineer, 6 years building APIs", "senior"},
		{"years mid", "Engineer with 3 yrs of experience", "mid"},
		{"years junior", "1 year of experience in web development", "junior"},
		{"nothing", "", "mid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text).RoleLevel)
		})
	}
}

func TestStartLevel(t *testing.T) {
	var nilProfile *Profile
	assert.Equal(t, adaptive.LevelEasy, nilProfile.StartLevel())
	assert.Equal(t, "mid", nilProfile.Role())

	assert.Equal(t, adaptive.LevelEasy, (&Profile{RoleLevel: "junior"}).StartLevel())
	assert.Equal(t, adaptive.LevelMedium, (&Profile{RoleLevel: "mid"}).StartLevel())
	assert.Equal(t, adaptive.LevelHard, (&Profile{RoleLevel: "Senior"}).StartLevel())
	assert.Equal(t, adaptive.LevelMedium, (&Profile{RoleLevel: "wizard"}).StartLevel())
}

func TestGuessName(t *testing.T) {
	assert.Equal(t, "Jane Doe", guessName("Jane Doe\nEngineer"))
	assert.Equal(t, "", guessName("jane doe"))
	assert.Equal(t, "", guessName("Curriculum Vitae 2024"))
	assert.Equal(t, "", guessName("Engineer"))
}

func TestExtractor_UsesModel(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(
		`{"name":"J. Doe","role_level":"junior","years_experience":1,"skills":["Go"," Kafka "],"summary":"New grad."}`,
	))
	ex := NewExtractor(mock, nil)

	p, err := ex.Extract(context.Background(), resume)
	require.NoError(t, err)
	assert.Equal(t, "J. Doe", p.Name)
	assert.Equal(t, "junior", p.RoleLevel)
	assert.Equal(t, []string{"go", "kafka"}, p.Skills)
	// Topics always come from the topic table.
	assert.Contains(t, p.Topics, "react")

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, Schema, mock.Calls[0].Schema)
}

func TestExtractor_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: errors.New("down")}},
		{"invalid json", llm.MockText(`not json`)},
		{"schema violation", llm.MockText(`{"role_level":"guru","years_experience":3,"skills":[]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor(llm.NewMockProvider(tt.resp), nil)
			p, err := ex.Extract(context.Background(), resume)
			require.NoError(t, err)
			assert.Equal(t, Extract(resume), p)
		})
	}
}

func TestExtractor_NilProvider(t *testing.T) {
	p, err := NewExtractor(nil, nil).Extract(context.Background(), resume)
	require.NoError(t, err)
	assert.Equal(t, "senior", p.RoleLevel)
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := NewExtractor(llm.NewMockProvider(llm.MockResponse{Err: context.Canceled}), nil)
	_, err := ex.Extract(ctx, resume)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFocusTopics(t *testing.T) {
	p := &Profile{Topics: []string{"react", "database"}}
	assert.Equal(t, []string{"React", "Database"}, p.FocusTopics())
}
