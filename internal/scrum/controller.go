// Package scrum holds the in-memory authority over the project
// collection and applies every domain mutation. Views (the CLI) call
// into the Controller only; they never touch the store or codec.
package scrum

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/store"
)

// Sentinel errors reported to callers. Neither mutates state.
var (
	// ErrValidation indicates caller input violates a domain rule.
	ErrValidation = errors.New("scrum: invalid input")

	// ErrNotFound indicates an id does not resolve to an entity.
	ErrNotFound = errors.New("scrum: not found")
)

// Controller is the single writer over the document store. Mutations
// update the in-memory collection, persist the full collection, and
// re-read it (read-after-write) before returning. Calls are expected
// to be serialized by the caller; the Controller provides no locking.
type Controller struct {
	store store.Store
	log   *zap.Logger

	projects []models.Project
	loading  bool
	lastErr  error
}

// New constructs a Controller over the given store. Call Load (or run
// the first mutation) to populate the in-memory collection.
func New(st store.Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{store: st, log: log}
}

// Projects returns the current in-memory collection. Treat as
// read-only; mutations go through the operation set.
func (c *Controller) Projects() []models.Project { return c.projects }

// Project returns the project with the given id, or nil.
func (c *Controller) Project(id string) *models.Project {
	return c.findProject(id)
}

// Loading reports whether a load is in flight.
func (c *Controller) Loading() bool { return c.loading }

// LastError returns the most recent non-fatal persistence failure, or
// nil after the last successful save.
func (c *Controller) LastError() error { return c.lastErr }

// Load replaces the in-memory collection with the stored one.
func (c *Controller) Load() error {
	c.loading = true
	defer func() { c.loading = false }()

	projects, err := c.store.Load()
	if err != nil {
		c.lastErr = err
		return err
	}
	c.projects = projects
	c.lastErr = nil
	return nil
}

// persist saves the full in-memory collection, then refreshes it from
// the store. On save failure the attempted in-memory value is kept
// (memory and disk may diverge until the next successful save).
func (c *Controller) persist() error {
	if err := c.store.Save(c.projects); err != nil {
		c.lastErr = err
		c.log.Error("save failed, keeping in-memory state", zap.Error(err))
		return err
	}

	projects, err := c.store.Load()
	if err != nil {
		c.lastErr = err
		return err
	}
	c.projects = projects
	c.lastErr = nil
	return nil
}

func (c *Controller) findProject(id string) *models.Project {
	for i := range c.projects {
		if c.projects[i].ID == id {
			return &c.projects[i]
		}
	}
	return nil
}

// findStoryInProject locates a story in the backlog or any sprint.
func findStoryInProject(p *models.Project, storyID string) *models.UserStory {
	for i := range p.Backlog {
		if p.Backlog[i].ID == storyID {
			return &p.Backlog[i]
		}
	}
	for i := range p.Sprints {
		if s := p.Sprints[i].FindStory(storyID); s != nil {
			return s
		}
	}
	return nil
}

// --- Projects ---

// CreateProject validates, constructs, appends, and persists a project.
func (c *Controller) CreateProject(name, description string, weeks int) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is empty", ErrValidation)
	}

	p := models.NewProject(name, description, weeks)
	c.projects = append(c.projects, p)
	if err := c.persist(); err != nil {
		return nil, err
	}
	return c.findProject(p.ID), nil
}

// UpdateProject replaces the project with the same id. An unknown id
// is a no-op. Sprint duration is re-clamped and UpdatedAt stamped.
func (c *Controller) UpdateProject(p models.Project) error {
	existing := c.findProject(p.ID)
	if existing == nil {
		return nil
	}
	p.SprintDurationWeeks = models.ClampSprintWeeks(p.SprintDurationWeeks)
	p.UpdatedAt = time.Now().UTC()
	*existing = p
	return c.persist()
}

// DeleteProject removes the project and, with it, every contained
// sprint, story, member, and criterion.
func (c *Controller) DeleteProject(id string) error {
	kept := c.projects[:0]
	found := false
	for _, p := range c.projects {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	c.projects = kept
	return c.persist()
}

// --- Sprint lifecycle ---

// CreateSprint appends a new Planning sprint to the project.
func (c *Controller) CreateSprint(projectID, name, goal string) (*models.Sprint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: sprint name is empty", ErrValidation)
	}
	p := c.findProject(projectID)
	if p == nil {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}

	sprint := models.NewSprint(name, goal)
	p.Sprints = append(p.Sprints, sprint)
	p.UpdatedAt = time.Now().UTC()
	if err := c.persist(); err != nil {
		return nil, err
	}
	if p = c.findProject(projectID); p != nil {
		return p.FindSprint(sprint.ID), nil
	}
	return nil, nil
}

// UpdateSprint edits a sprint's name, goal, and planned dates. Status
// and stories are deliberately untouched: status moves only through
// the lifecycle operations, stories through the move operations.
func (c *Controller) UpdateSprint(projectID string, sprint models.Sprint) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	existing := p.FindSprint(sprint.ID)
	if existing == nil {
		return fmt.Errorf("%w: sprint %s", ErrNotFound, sprint.ID)
	}
	if strings.TrimSpace(sprint.Name) == "" {
		return fmt.Errorf("%w: sprint name is empty", ErrValidation)
	}

	existing.Name = sprint.Name
	existing.Goal = sprint.Goal
	existing.StartDate = sprint.StartDate
	existing.EndDate = sprint.EndDate
	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// StartSprint activates a Planning sprint. Any other sprint in the
// project that is currently Active is completed first, with its end
// date stamped, keeping at most one Active sprint per project. The
// whole transition persists as a single collection write.
func (c *Controller) StartSprint(projectID, sprintID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	target := p.FindSprint(sprintID)
	if target == nil {
		return fmt.Errorf("%w: sprint %s", ErrNotFound, sprintID)
	}
	if target.Status != models.SprintPlanning {
		return fmt.Errorf("%w: sprint %q is %s, only a planning sprint can start",
			ErrValidation, target.Name, target.Status)
	}

	now := time.Now().UTC()
	for i := range p.Sprints {
		if p.Sprints[i].ID != sprintID && p.Sprints[i].Status == models.SprintActive {
			p.Sprints[i].Status = models.SprintCompleted
			end := now
			p.Sprints[i].EndDate = &end
		}
	}

	target.Status = models.SprintActive
	if target.StartDate == nil {
		start := now
		target.StartDate = &start
	}
	if target.EndDate == nil {
		end := target.StartDate.AddDate(0, 0, p.SprintDurationWeeks*7)
		target.EndDate = &end
	}

	p.UpdatedAt = now
	return c.persist()
}

// CompleteSprint finishes an Active sprint: Done stories stay with it,
// everything else returns to the backlog with its status reset to
// To Do and its sprint reference cleared.
func (c *Controller) CompleteSprint(projectID, sprintID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	sprint := p.FindSprint(sprintID)
	if sprint == nil {
		return fmt.Errorf("%w: sprint %s", ErrNotFound, sprintID)
	}
	if sprint.Status != models.SprintActive {
		return fmt.Errorf("%w: sprint %q is %s, only an active sprint can complete",
			ErrValidation, sprint.Name, sprint.Status)
	}

	sprint.Status = models.SprintCompleted
	var kept []models.UserStory
	for _, st := range sprint.Stories {
		if st.Status == models.StoryDone {
			kept = append(kept, st)
			continue
		}
		st.SprintID = ""
		st.Status = models.StoryTodo
		p.Backlog = append(p.Backlog, st)
	}
	sprint.Stories = kept

	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// CancelSprint abandons a Planning or Active sprint. All of its
// stories return to the backlog reset to To Do.
func (c *Controller) CancelSprint(projectID, sprintID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	sprint := p.FindSprint(sprintID)
	if sprint == nil {
		return fmt.Errorf("%w: sprint %s", ErrNotFound, sprintID)
	}
	if sprint.Status.Terminal() {
		return fmt.Errorf("%w: sprint %q is already %s",
			ErrValidation, sprint.Name, sprint.Status)
	}

	sprint.Status = models.SprintCancelled
	for _, st := range sprint.Stories {
		st.SprintID = ""
		st.Status = models.StoryTodo
		p.Backlog = append(p.Backlog, st)
	}
	sprint.Stories = nil

	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// DeleteSprint removes a Planning sprint. Its stories return to the
// backlog with their statuses unchanged, unlike a cancel.
func (c *Controller) DeleteSprint(projectID, sprintID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	sprint := p.FindSprint(sprintID)
	if sprint == nil {
		return fmt.Errorf("%w: sprint %s", ErrNotFound, sprintID)
	}
	if sprint.Status != models.SprintPlanning {
		return fmt.Errorf("%w: sprint %q is %s, only a planning sprint can be deleted",
			ErrValidation, sprint.Name, sprint.Status)
	}

	for _, st := range sprint.Stories {
		st.SprintID = ""
		p.Backlog = append(p.Backlog, st)
	}
	kept := p.Sprints[:0]
	for _, s := range p.Sprints {
		if s.ID != sprintID {
			kept = append(kept, s)
		}
	}
	p.Sprints = kept

	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// --- Story moves ---

// MoveStoriesToSprint moves the given backlog stories into a sprint,
// setting their sprint reference and preserving selection order. Ids
// not found in the backlog are silently skipped. One collection write.
func (c *Controller) MoveStoriesToSprint(projectID string, storyIDs []string, sprintID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	sprint := p.FindSprint(sprintID)
	if sprint == nil {
		return fmt.Errorf("%w: sprint %s", ErrNotFound, sprintID)
	}

	for _, id := range storyIDs {
		for i := range p.Backlog {
			if p.Backlog[i].ID != id {
				continue
			}
			st := p.Backlog[i]
			p.Backlog = append(p.Backlog[:i], p.Backlog[i+1:]...)
			st.SprintID = sprint.ID
			sprint.Stories = append(sprint.Stories, st)
			break
		}
	}

	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// MoveStoryStatus updates a story's board status in place, wherever
// the story currently resides across the loaded projects.
func (c *Controller) MoveStoryStatus(storyID string, status models.StoryStatus) error {
	for i := range c.projects {
		st := findStoryInProject(&c.projects[i], storyID)
		if st == nil {
			continue
		}
		st.Status = status
		st.UpdatedAt = time.Now().UTC()
		c.projects[i].UpdatedAt = st.UpdatedAt
		return c.persist()
	}
	return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
}

// --- Story CRUD ---

// StoryInput carries caller-supplied fields for a new story.
type StoryInput struct {
	Title       string
	Description string
	Priority    models.Priority
	Points      int
	Tags        []string
	AssigneeIDs []string
}

// AddStory appends a new story to the project's backlog. Points
// outside the valid scale are coerced to 1.
func (c *Controller) AddStory(projectID string, in StoryInput) (*models.UserStory, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: story title is empty", ErrValidation)
	}
	p := c.findProject(projectID)
	if p == nil {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}

	st := models.NewStory(title, in.Description, in.Priority, in.Points)
	st.Tags = in.Tags
	st.AssigneeIDs = in.AssigneeIDs
	p.Backlog = append(p.Backlog, st)
	p.UpdatedAt = time.Now().UTC()
	if err := c.persist(); err != nil {
		return nil, err
	}
	if p = c.findProject(projectID); p != nil {
		return findStoryInProject(p, st.ID), nil
	}
	return nil, nil
}

// UpdateStory replaces a story's content wherever it resides. The
// containing list and sprint reference are preserved; moves between
// backlog and sprint go through the move operations.
func (c *Controller) UpdateStory(projectID string, story models.UserStory) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	existing := findStoryInProject(p, story.ID)
	if existing == nil {
		return fmt.Errorf("%w: story %s", ErrNotFound, story.ID)
	}
	if strings.TrimSpace(story.Title) == "" {
		return fmt.Errorf("%w: story title is empty", ErrValidation)
	}

	story.SprintID = existing.SprintID
	story.StoryPoints = models.NormalizePoints(story.StoryPoints)
	story.CreatedAt = existing.CreatedAt
	story.UpdatedAt = time.Now().UTC()
	*existing = story

	p.UpdatedAt = story.UpdatedAt
	return c.persist()
}

// DeleteStory removes a story from the backlog or its sprint.
func (c *Controller) DeleteStory(projectID, storyID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}

	found := false
	kept := p.Backlog[:0]
	for _, st := range p.Backlog {
		if st.ID == storyID {
			found = true
			continue
		}
		kept = append(kept, st)
	}
	p.Backlog = kept

	if !found {
		for i := range p.Sprints {
			keptStories := p.Sprints[i].Stories[:0]
			for _, st := range p.Sprints[i].Stories {
				if st.ID == storyID {
					found = true
					continue
				}
				keptStories = append(keptStories, st)
			}
			p.Sprints[i].Stories = keptStories
			if found {
				break
			}
		}
	}
	if !found {
		return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}

	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// --- Member CRUD ---

// MemberInput carries caller-supplied fields for a new team member.
type MemberInput struct {
	Name        string
	Email       string
	Role        models.Role
	AvatarColor string
}

// AddMember appends a new member to the project.
func (c *Controller) AddMember(projectID string, in MemberInput) (*models.TeamMember, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: member name is empty", ErrValidation)
	}
	p := c.findProject(projectID)
	if p == nil {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}

	m := models.NewMember(name, in.Email, in.Role, in.AvatarColor)
	p.Members = append(p.Members, m)
	p.UpdatedAt = time.Now().UTC()
	if err := c.persist(); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMember replaces the member with the same id.
func (c *Controller) UpdateMember(projectID string, member models.TeamMember) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	if strings.TrimSpace(member.Name) == "" {
		return fmt.Errorf("%w: member name is empty", ErrValidation)
	}
	for i := range p.Members {
		if p.Members[i].ID == member.ID {
			p.Members[i] = member
			p.UpdatedAt = time.Now().UTC()
			return c.persist()
		}
	}
	return fmt.Errorf("%w: member %s", ErrNotFound, member.ID)
}

// RemoveMember removes a member. Story assignee references to the
// removed member are weak and deliberately left dangling.
func (c *Controller) RemoveMember(projectID, memberID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}

	found := false
	kept := p.Members[:0]
	for _, m := range p.Members {
		if m.ID == memberID {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return fmt.Errorf("%w: member %s", ErrNotFound, memberID)
	}
	p.Members = kept
	p.UpdatedAt = time.Now().UTC()
	return c.persist()
}

// --- Acceptance criteria ---

// AddCriterion appends an acceptance criterion to a story.
func (c *Controller) AddCriterion(projectID, storyID, description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("%w: criterion description is empty", ErrValidation)
	}
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	st := findStoryInProject(p, storyID)
	if st == nil {
		return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}

	st.AcceptanceCriteria = append(st.AcceptanceCriteria, models.NewCriterion(description))
	st.UpdatedAt = time.Now().UTC()
	p.UpdatedAt = st.UpdatedAt
	return c.persist()
}

// ToggleCriterion flips a criterion's completed flag.
func (c *Controller) ToggleCriterion(projectID, storyID, criterionID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	st := findStoryInProject(p, storyID)
	if st == nil {
		return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}
	for i := range st.AcceptanceCriteria {
		if st.AcceptanceCriteria[i].ID == criterionID {
			st.AcceptanceCriteria[i].Completed = !st.AcceptanceCriteria[i].Completed
			st.UpdatedAt = time.Now().UTC()
			p.UpdatedAt = st.UpdatedAt
			return c.persist()
		}
	}
	return fmt.Errorf("%w: criterion %s", ErrNotFound, criterionID)
}

// RemoveCriterion removes a criterion from a story.
func (c *Controller) RemoveCriterion(projectID, storyID, criterionID string) error {
	p := c.findProject(projectID)
	if p == nil {
		return fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	st := findStoryInProject(p, storyID)
	if st == nil {
		return fmt.Errorf("%w: story %s", ErrNotFound, storyID)
	}

	found := false
	kept := st.AcceptanceCriteria[:0]
	for _, cr := range st.AcceptanceCriteria {
		if cr.ID == criterionID {
			found = true
			continue
		}
		kept = append(kept, cr)
	}
	if !found {
		return fmt.Errorf("%w: criterion %s", ErrNotFound, criterionID)
	}
	st.AcceptanceCriteria = kept
	st.UpdatedAt = time.Now().UTC()
	p.UpdatedAt = st.UpdatedAt
	return c.persist()
}

// --- Backup / maintenance ---

// ExportData returns the collection as plaintext backup bytes.
func (c *Controller) ExportData() ([]byte, error) {
	return c.store.Export()
}

// ImportData replaces the stored collection from backup bytes and
// refreshes the in-memory view. Storage and memory are untouched when
// the bytes do not decode.
func (c *Controller) ImportData(data []byte) error {
	if err := c.store.Import(data); err != nil {
		return err
	}
	return c.Load()
}

// ClearAll deletes the persisted file and empties the in-memory view.
func (c *Controller) ClearAll() error {
	if err := c.store.Clear(); err != nil {
		c.lastErr = err
		return err
	}
	c.projects = nil
	c.lastErr = nil
	return nil
}

// LoadSampleData replaces the collection with the demo fixture set.
func (c *Controller) LoadSampleData() error {
	c.projects = models.SampleProjects()
	return c.persist()
}

// StorageInfo returns the document file size and location.
func (c *Controller) StorageInfo() (int64, string) {
	return c.store.Info()
}
