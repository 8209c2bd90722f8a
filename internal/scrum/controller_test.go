package scrum

import (
	"crypto/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/store"
)

type staticKeys struct{ key []byte }

func (s staticKeys) GetOrCreateKey() ([]byte, error) { return s.key, nil }

func newTestController(t *testing.T) *Controller {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	st := store.NewEncryptedStore(
		filepath.Join(t.TempDir(), "scrume_data.encrypted"),
		staticKeys{key: key}, zap.NewNop())
	c := New(st, zap.NewNop())
	require.NoError(t, c.Load())
	return c
}

// assertStoryExclusivity checks that every story id lives in exactly
// one of backlog or one sprint, with a consistent sprint reference.
func assertStoryExclusivity(t *testing.T, p *models.Project) {
	t.Helper()
	seen := map[string]int{}
	for _, st := range p.Backlog {
		seen[st.ID]++
		assert.Empty(t, st.SprintID, "backlog story %s must not reference a sprint", st.Title)
	}
	for _, sp := range p.Sprints {
		for _, st := range sp.Stories {
			seen[st.ID]++
			assert.Equal(t, sp.ID, st.SprintID,
				"sprint story %s must reference its containing sprint", st.Title)
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "story %s appears %d times", id, n)
	}
}

func countActive(p *models.Project) int {
	n := 0
	for _, s := range p.Sprints {
		if s.Status == models.SprintActive {
			n++
		}
	}
	return n
}

// --- Project CRUD ---

func TestCreateProject(t *testing.T) {
	c := newTestController(t)

	p, err := c.CreateProject("  Alpha  ", "first", 2)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Alpha", p.Name, "name is trimmed")
	assert.Equal(t, 2, p.SprintDurationWeeks)
	assert.NotEmpty(t, p.ID)

	// Persisted: a fresh load sees it.
	require.NoError(t, c.Load())
	require.Len(t, c.Projects(), 1)
	assert.Equal(t, "Alpha", c.Projects()[0].Name)
}

func TestCreateProjectEmptyName(t *testing.T) {
	c := newTestController(t)

	_, err := c.CreateProject("   ", "", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, c.Projects(), "failed validation must not mutate state")
}

func TestCreateProjectClampsDuration(t *testing.T) {
	c := newTestController(t)

	p, err := c.CreateProject("Alpha", "", 99)
	require.NoError(t, err)
	assert.Equal(t, 4, p.SprintDurationWeeks)

	p, err = c.CreateProject("Beta", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SprintDurationWeeks)
}

func TestUpdateProject(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)

	updated := *p
	updated.Description = "new description"
	require.NoError(t, c.UpdateProject(updated))

	got := c.Project(p.ID)
	require.NotNil(t, got)
	assert.Equal(t, "new description", got.Description)
	assert.True(t, got.UpdatedAt.After(p.CreatedAt) || got.UpdatedAt.Equal(p.CreatedAt))
}

func TestUpdateProjectUnknownIDNoOp(t *testing.T) {
	c := newTestController(t)
	_, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)

	ghost := models.NewProject("Ghost", "", 2)
	require.NoError(t, c.UpdateProject(ghost))
	assert.Len(t, c.Projects(), 1)
	assert.Nil(t, c.Project(ghost.ID))
}

func TestDeleteProjectCascades(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	_, err = c.AddStory(p.ID, StoryInput{Title: "story", Points: 3})
	require.NoError(t, err)
	_, err = c.CreateSprint(p.ID, "S1", "")
	require.NoError(t, err)

	require.NoError(t, c.DeleteProject(p.ID))
	assert.Empty(t, c.Projects())

	require.NoError(t, c.Load())
	assert.Empty(t, c.Projects())

	err = c.DeleteProject(p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Sprint lifecycle ---

// seedSprint creates a project with one Planning sprint holding the
// given stories (moved out of the backlog).
func seedSprint(t *testing.T, c *Controller, weeks int, points ...int) (projectID, sprintID string) {
	t.Helper()

	p, err := c.CreateProject("Alpha", "", weeks)
	require.NoError(t, err)
	sprint, err := c.CreateSprint(p.ID, "S1", "ship it")
	require.NoError(t, err)

	var ids []string
	for i, pts := range points {
		st, err := c.AddStory(p.ID, StoryInput{
			Title:  "story " + string(rune('A'+i)),
			Points: pts,
		})
		require.NoError(t, err)
		ids = append(ids, st.ID)
	}
	require.NoError(t, c.MoveStoriesToSprint(p.ID, ids, sprint.ID))
	return p.ID, sprint.ID
}

func TestStartSprintScenario(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3, 5)

	before := time.Now().UTC()
	require.NoError(t, c.StartSprint(projectID, sprintID))

	p := c.Project(projectID)
	require.NotNil(t, p)
	sprint := p.FindSprint(sprintID)
	require.NotNil(t, sprint)

	assert.Equal(t, models.SprintActive, sprint.Status)
	require.NotNil(t, sprint.StartDate)
	require.NotNil(t, sprint.EndDate)
	assert.False(t, sprint.StartDate.Before(before))
	assert.Equal(t, sprint.StartDate.AddDate(0, 0, 14), *sprint.EndDate,
		"end date is start date plus the project's two-week duration")

	assert.Empty(t, p.Backlog, "moved stories left the backlog")
	assert.Len(t, sprint.Stories, 2)
	assertStoryExclusivity(t, p)
}

func TestStartSprintCompletesActive(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	a, err := c.CreateSprint(p.ID, "A", "")
	require.NoError(t, err)
	b, err := c.CreateSprint(p.ID, "B", "")
	require.NoError(t, err)

	require.NoError(t, c.StartSprint(p.ID, a.ID))
	before := time.Now().UTC()
	require.NoError(t, c.StartSprint(p.ID, b.ID))

	proj := c.Project(p.ID)
	require.NotNil(t, proj)
	gotA := proj.FindSprint(a.ID)
	gotB := proj.FindSprint(b.ID)
	require.NotNil(t, gotA)
	require.NotNil(t, gotB)

	assert.Equal(t, models.SprintCompleted, gotA.Status)
	require.NotNil(t, gotA.EndDate)
	assert.False(t, gotA.EndDate.Before(before), "completed sprint end date is stamped now")
	assert.Equal(t, models.SprintActive, gotB.Status)
	assert.Equal(t, 1, countActive(proj))
}

func TestStartSprintSequencesKeepSingleActive(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 1)
	require.NoError(t, err)

	var sprints []string
	for _, name := range []string{"S1", "S2", "S3", "S4"} {
		s, err := c.CreateSprint(p.ID, name, "")
		require.NoError(t, err)
		sprints = append(sprints, s.ID)
	}

	for _, id := range sprints {
		require.NoError(t, c.StartSprint(p.ID, id))
		proj := c.Project(p.ID)
		require.NotNil(t, proj)
		assert.LessOrEqual(t, countActive(proj), 1)
	}

	// Restarting a completed sprint is rejected.
	err = c.StartSprint(p.ID, sprints[0])
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStartSprintPreservesPresetDates(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	s, err := c.CreateSprint(p.ID, "S1", "")
	require.NoError(t, err)

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)
	planned := *s
	planned.StartDate = &start
	planned.EndDate = &end
	require.NoError(t, c.UpdateSprint(p.ID, planned))

	require.NoError(t, c.StartSprint(p.ID, s.ID))

	got := c.Project(p.ID).FindSprint(s.ID)
	require.NotNil(t, got)
	assert.True(t, got.StartDate.Equal(start), "preset start date is kept")
	assert.True(t, got.EndDate.Equal(end), "preset end date is kept")
}

func TestCompleteSprintPartitionsStories(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3, 5, 8)
	require.NoError(t, c.StartSprint(projectID, sprintID))

	// Mark exactly one story done, one in progress, one left to do.
	sprint := c.Project(projectID).FindSprint(sprintID)
	require.NotNil(t, sprint)
	doneID := sprint.Stories[0].ID
	inProgressID := sprint.Stories[2].ID
	require.NoError(t, c.MoveStoryStatus(doneID, models.StoryDone))
	require.NoError(t, c.MoveStoryStatus(inProgressID, models.StoryInProgress))

	require.NoError(t, c.CompleteSprint(projectID, sprintID))

	p := c.Project(projectID)
	require.NotNil(t, p)
	got := p.FindSprint(sprintID)
	require.NotNil(t, got)

	assert.Equal(t, models.SprintCompleted, got.Status)
	require.Len(t, got.Stories, 1, "only the done story stays")
	assert.Equal(t, doneID, got.Stories[0].ID)

	require.Len(t, p.Backlog, 2, "unfinished stories return to the backlog")
	for _, st := range p.Backlog {
		assert.Equal(t, models.StoryTodo, st.Status, "returned stories reset to To Do")
		assert.Empty(t, st.SprintID)
	}
	assertStoryExclusivity(t, p)
}

func TestCompleteSprintRequiresActive(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3)

	err := c.CompleteSprint(projectID, sprintID)
	assert.ErrorIs(t, err, ErrValidation, "a planning sprint cannot complete")
}

func TestCancelSprintReturnsAllStories(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3, 5)
	require.NoError(t, c.StartSprint(projectID, sprintID))

	sprint := c.Project(projectID).FindSprint(sprintID)
	require.NoError(t, c.MoveStoryStatus(sprint.Stories[0].ID, models.StoryDone))

	require.NoError(t, c.CancelSprint(projectID, sprintID))

	p := c.Project(projectID)
	got := p.FindSprint(sprintID)
	require.NotNil(t, got)

	assert.Equal(t, models.SprintCancelled, got.Status)
	assert.Empty(t, got.Stories, "cancel returns everything, done or not")
	require.Len(t, p.Backlog, 2)
	for _, st := range p.Backlog {
		assert.Equal(t, models.StoryTodo, st.Status)
		assert.Empty(t, st.SprintID)
	}
	assertStoryExclusivity(t, p)

	// Terminal: cannot cancel again, cannot start.
	assert.ErrorIs(t, c.CancelSprint(projectID, sprintID), ErrValidation)
	assert.ErrorIs(t, c.StartSprint(projectID, sprintID), ErrValidation)
}

func TestDeleteSprintKeepsStoryStatus(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3, 5)

	// Work starts while the sprint is still in planning.
	sprint := c.Project(projectID).FindSprint(sprintID)
	movedID := sprint.Stories[0].ID
	require.NoError(t, c.MoveStoryStatus(movedID, models.StoryInProgress))

	require.NoError(t, c.DeleteSprint(projectID, sprintID))

	p := c.Project(projectID)
	assert.Nil(t, p.FindSprint(sprintID))
	require.Len(t, p.Backlog, 2)
	for _, st := range p.Backlog {
		assert.Empty(t, st.SprintID)
		if st.ID == movedID {
			assert.Equal(t, models.StoryInProgress, st.Status,
				"delete preserves story status, unlike cancel")
		}
	}
	assertStoryExclusivity(t, p)
}

func TestDeleteSprintRequiresPlanning(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3)
	require.NoError(t, c.StartSprint(projectID, sprintID))

	err := c.DeleteSprint(projectID, sprintID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotNil(t, c.Project(projectID).FindSprint(sprintID))
}

// --- Story moves ---

func TestMoveStoriesToSprintSkipsUnknownIDs(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	sprint, err := c.CreateSprint(p.ID, "S1", "")
	require.NoError(t, err)
	a, err := c.AddStory(p.ID, StoryInput{Title: "a", Points: 3})
	require.NoError(t, err)
	b, err := c.AddStory(p.ID, StoryInput{Title: "b", Points: 5})
	require.NoError(t, err)

	require.NoError(t, c.MoveStoriesToSprint(p.ID, []string{a.ID, "nope", b.ID}, sprint.ID))

	proj := c.Project(p.ID)
	got := proj.FindSprint(sprint.ID)
	require.Len(t, got.Stories, 2)
	assert.Equal(t, a.ID, got.Stories[0].ID, "selection order preserved")
	assert.Equal(t, b.ID, got.Stories[1].ID)
	assert.Empty(t, proj.Backlog)
	assertStoryExclusivity(t, proj)
}

func TestMoveStoryStatus(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	st, err := c.AddStory(p.ID, StoryInput{Title: "backlog story", Points: 3})
	require.NoError(t, err)
	created := st.UpdatedAt

	require.NoError(t, c.MoveStoryStatus(st.ID, models.StoryInProgress))

	got := c.Project(p.ID).Backlog[0]
	assert.Equal(t, models.StoryInProgress, got.Status)
	assert.False(t, got.UpdatedAt.Before(created))

	assert.ErrorIs(t, c.MoveStoryStatus("missing", models.StoryDone), ErrNotFound)
}

func TestStoryExclusivityAcrossMutations(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3, 5, 8)
	check := func() {
		t.Helper()
		assertStoryExclusivity(t, c.Project(projectID))
	}
	check()

	require.NoError(t, c.StartSprint(projectID, sprintID))
	check()

	sprint := c.Project(projectID).FindSprint(sprintID)
	require.NoError(t, c.MoveStoryStatus(sprint.Stories[1].ID, models.StoryDone))
	check()

	require.NoError(t, c.CompleteSprint(projectID, sprintID))
	check()

	// Move the returned stories into a fresh sprint and delete it.
	next, err := c.CreateSprint(projectID, "S2", "")
	require.NoError(t, err)
	var backlogIDs []string
	for _, st := range c.Project(projectID).Backlog {
		backlogIDs = append(backlogIDs, st.ID)
	}
	require.NoError(t, c.MoveStoriesToSprint(projectID, backlogIDs, next.ID))
	check()
	require.NoError(t, c.DeleteSprint(projectID, next.ID))
	check()
}

// --- Story CRUD ---

func TestAddStoryCoercesPoints(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)

	st, err := c.AddStory(p.ID, StoryInput{Title: "odd estimate", Points: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, st.StoryPoints, "invalid points coerce to 1")

	st, err = c.AddStory(p.ID, StoryInput{Title: "fib estimate", Points: 13})
	require.NoError(t, err)
	assert.Equal(t, 13, st.StoryPoints)

	_, err = c.AddStory(p.ID, StoryInput{Title: "  "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStoryPreservesContainer(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3)

	sprint := c.Project(projectID).FindSprint(sprintID)
	edited := sprint.Stories[0]
	edited.Title = "retitled"
	edited.StoryPoints = 4 // off-scale on purpose
	edited.SprintID = ""   // callers cannot move a story via update

	require.NoError(t, c.UpdateStory(projectID, edited))

	p := c.Project(projectID)
	got := p.FindSprint(sprintID).FindStory(edited.ID)
	require.NotNil(t, got, "story stays inside its sprint")
	assert.Equal(t, "retitled", got.Title)
	assert.Equal(t, 1, got.StoryPoints, "off-scale points coerce on update")
	assert.Equal(t, sprintID, got.SprintID)
	assertStoryExclusivity(t, p)
}

func TestDeleteStoryFromBacklogAndSprint(t *testing.T) {
	c := newTestController(t)
	projectID, sprintID := seedSprint(t, c, 2, 3)
	backlogStory, err := c.AddStory(projectID, StoryInput{Title: "stays backlog", Points: 2})
	require.NoError(t, err)

	require.NoError(t, c.DeleteStory(projectID, backlogStory.ID))
	sprintStoryID := c.Project(projectID).FindSprint(sprintID).Stories[0].ID
	require.NoError(t, c.DeleteStory(projectID, sprintStoryID))

	p := c.Project(projectID)
	assert.Empty(t, p.Backlog)
	assert.Empty(t, p.FindSprint(sprintID).Stories)

	assert.ErrorIs(t, c.DeleteStory(projectID, "missing"), ErrNotFound)
}

// --- Members and criteria ---

func TestMemberCRUD(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)

	m, err := c.AddMember(p.ID, MemberInput{Name: "John Smith", Email: "john@email.com", Role: models.RoleDeveloper})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAvatarColor, m.AvatarColor)

	edited := *m
	edited.Role = models.RoleScrumMaster
	require.NoError(t, c.UpdateMember(p.ID, edited))
	assert.Equal(t, models.RoleScrumMaster, c.Project(p.ID).Members[0].Role)

	_, err = c.AddMember(p.ID, MemberInput{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, c.RemoveMember(p.ID, m.ID))
	assert.Empty(t, c.Project(p.ID).Members)
	assert.ErrorIs(t, c.RemoveMember(p.ID, m.ID), ErrNotFound)
}

func TestRemoveMemberKeepsAssigneeReferences(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	m, err := c.AddMember(p.ID, MemberInput{Name: "Mike Chen", Role: models.RoleDeveloper})
	require.NoError(t, err)
	st, err := c.AddStory(p.ID, StoryInput{Title: "assigned", Points: 3, AssigneeIDs: []string{m.ID}})
	require.NoError(t, err)

	require.NoError(t, c.RemoveMember(p.ID, m.ID))

	// Assignee ids are weak references and are not pruned.
	got := c.Project(p.ID).Backlog[0]
	assert.Equal(t, st.ID, got.ID)
	assert.Equal(t, []string{m.ID}, got.AssigneeIDs)
}

func TestCriterionLifecycle(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	st, err := c.AddStory(p.ID, StoryInput{Title: "with criteria", Points: 3})
	require.NoError(t, err)

	require.NoError(t, c.AddCriterion(p.ID, st.ID, "shows a spinner"))
	assert.ErrorIs(t, c.AddCriterion(p.ID, st.ID, "  "), ErrValidation)

	got := c.Project(p.ID).Backlog[0]
	require.Len(t, got.AcceptanceCriteria, 1)
	crit := got.AcceptanceCriteria[0]
	assert.False(t, crit.Completed)

	require.NoError(t, c.ToggleCriterion(p.ID, st.ID, crit.ID))
	assert.True(t, c.Project(p.ID).Backlog[0].AcceptanceCriteria[0].Completed)
	require.NoError(t, c.ToggleCriterion(p.ID, st.ID, crit.ID))
	assert.False(t, c.Project(p.ID).Backlog[0].AcceptanceCriteria[0].Completed)

	require.NoError(t, c.RemoveCriterion(p.ID, st.ID, crit.ID))
	assert.Empty(t, c.Project(p.ID).Backlog[0].AcceptanceCriteria)
	assert.ErrorIs(t, c.RemoveCriterion(p.ID, st.ID, crit.ID), ErrNotFound)
}

// --- Backup / maintenance ---

func TestExportImportRoundTrip(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "backup", 3)
	require.NoError(t, err)
	_, err = c.AddStory(p.ID, StoryInput{Title: "keep me", Points: 5})
	require.NoError(t, err)

	data, err := c.ExportData()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alpha")

	require.NoError(t, c.ClearAll())
	assert.Empty(t, c.Projects())

	require.NoError(t, c.ImportData(data))
	require.Len(t, c.Projects(), 1)
	assert.Equal(t, p.ID, c.Projects()[0].ID)
	require.Len(t, c.Projects()[0].Backlog, 1)
}

func TestImportBadDataKeepsState(t *testing.T) {
	c := newTestController(t)
	_, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)

	require.Error(t, c.ImportData([]byte("nope")))
	assert.Len(t, c.Projects(), 1, "failed import must not mutate state")
}

func TestLoadSampleData(t *testing.T) {
	c := newTestController(t)
	require.NoError(t, c.LoadSampleData())
	assert.Len(t, c.Projects(), 3)

	require.NoError(t, c.Load())
	assert.Len(t, c.Projects(), 3, "samples are persisted")
	assertStoryExclusivity(t, &c.Projects()[0])
}

// failingStore wraps a Store and fails every Save.
type failingStore struct {
	store.Store
	saveErr error
}

func (f *failingStore) Save([]models.Project) error { return f.saveErr }

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	inner := store.NewEncryptedStore(
		filepath.Join(t.TempDir(), "scrume_data.encrypted"),
		staticKeys{key: key}, zap.NewNop())
	failing := &failingStore{Store: inner, saveErr: store.ErrWrite}

	c := New(failing, zap.NewNop())
	require.NoError(t, c.Load())

	_, err = c.CreateProject("Alpha", "", 2)
	require.Error(t, err)
	assert.ErrorIs(t, c.LastError(), store.ErrWrite)

	// The attempted value stays in memory even though disk has nothing.
	require.Len(t, c.Projects(), 1)
	assert.Equal(t, "Alpha", c.Projects()[0].Name)

	onDisk, err := inner.Load()
	require.NoError(t, err)
	assert.Empty(t, onDisk)
}

func TestSaveEmptyThenLoad(t *testing.T) {
	c := newTestController(t)
	p, err := c.CreateProject("Alpha", "", 2)
	require.NoError(t, err)
	require.NoError(t, c.DeleteProject(p.ID))

	require.NoError(t, c.Load())
	assert.Empty(t, c.Projects())
}
