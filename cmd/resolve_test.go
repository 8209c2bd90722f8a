package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrumebox/scrume/internal/models"
)

func fixtureProject() *models.Project {
	p := models.NewProject("Mobile App", "", 2)
	p.Members = []models.TeamMember{
		models.NewMember("Sarah Chen", "sarah@example.com", models.RoleProductOwner, ""),
		models.NewMember("Mike Johnson", "mike@example.com", models.RoleDeveloper, ""),
	}
	sprint := models.NewSprint("Sprint 1", "Ship login")
	story := models.NewStory("Login screen", "", models.PriorityHigh, 5)
	story.SprintID = sprint.ID
	sprint.Stories = []models.UserStory{story}
	p.Sprints = []models.Sprint{sprint}
	p.Backlog = []models.UserStory{
		models.NewStory("Password reset", "", models.PriorityMedium, 3),
	}
	return &p
}

func TestResolveSprint_ByExactName(t *testing.T) {
	p := fixtureProject()

	s, err := resolveSprint(p, "sprint 1")
	require.NoError(t, err)
	assert.Equal(t, "Sprint 1", s.Name)
}

func TestResolveSprint_NotFound(t *testing.T) {
	p := fixtureProject()

	_, err := resolveSprint(p, "sprint 9")
	assert.Error(t, err)
}

func TestResolveStory_ByTitlePrefix(t *testing.T) {
	p := fixtureProject()

	st, err := resolveStory(p, "pass")
	require.NoError(t, err)
	assert.Equal(t, "Password reset", st.Title)
}

func TestResolveStory_FindsSprintStories(t *testing.T) {
	p := fixtureProject()

	st, err := resolveStory(p, "Login screen")
	require.NoError(t, err)
	assert.Equal(t, p.Sprints[0].ID, st.SprintID)
}

func TestResolveStory_ByShortID(t *testing.T) {
	p := fixtureProject()
	full := p.Backlog[0].ID

	st, err := resolveStory(p, shortID(full))
	require.NoError(t, err)
	assert.Equal(t, full, st.ID)
}

func TestResolveMember_Ambiguous(t *testing.T) {
	p := fixtureProject()
	p.Members = append(p.Members, models.NewMember("Mike Ross", "ross@example.com", models.RoleDesigner, ""))

	_, err := resolveMember(p, "mike")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestResolveMember_ExactNameWinsOverPrefix(t *testing.T) {
	p := fixtureProject()
	p.Members = append(p.Members, models.NewMember("Sarah", "s@example.com", models.RoleTester, ""))

	m, err := resolveMember(p, "Sarah")
	require.NoError(t, err)
	assert.Equal(t, "Sarah", m.Name)
}

func TestResolveCriterion(t *testing.T) {
	p := fixtureProject()
	st := &p.Backlog[0]
	st.AcceptanceCriteria = []models.AcceptanceCriterion{
		models.NewCriterion("Email is validated"),
		models.NewCriterion("Link expires after 24h"),
	}

	ac, err := resolveCriterion(st, "link")
	require.NoError(t, err)
	assert.Equal(t, "Link expires after 24h", ac.Description)

	_, err = resolveCriterion(st, "nope")
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	id := models.NewID()
	assert.Len(t, shortID(id), 8)
	assert.True(t, len(id) > 8)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(nil))
	d := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-14", formatDate(&d))
}
