package models

import "time"

// Project represents a scrum project: the root of the persisted graph.
// Members, sprints, and backlog stories are owned exclusively by their
// project and never persist independently of it.
type Project struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	SprintDurationWeeks int          `json:"sprintDurationWeeks"`
	Members             []TeamMember `json:"members"`
	Sprints             []Sprint     `json:"sprints"`
	Backlog             []UserStory  `json:"backlog"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Sprint duration bounds in weeks.
const (
	MinSprintWeeks = 1
	MaxSprintWeeks = 4
)

// ClampSprintWeeks forces a sprint duration into [MinSprintWeeks, MaxSprintWeeks].
func ClampSprintWeeks(weeks int) int {
	if weeks < MinSprintWeeks {
		return MinSprintWeeks
	}
	if weeks > MaxSprintWeeks {
		return MaxSprintWeeks
	}
	return weeks
}

// NewProject constructs a project with a fresh id and current timestamps.
func NewProject(name, description string, weeks int) Project {
	now := time.Now().UTC()
	return Project{
		ID:                  NewID(),
		Name:                name,
		Description:         description,
		SprintDurationWeeks: ClampSprintWeeks(weeks),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Same reports identity: both values describe the same project.
func (p Project) Same(other Project) bool {
	return p.ID == other.ID
}

// Equal reports identity plus freshness, for change detection by
// consumers: same project and same last-updated stamp.
func (p Project) Equal(other Project) bool {
	return p.ID == other.ID && p.UpdatedAt.Equal(other.UpdatedAt)
}

// ActiveSprint returns the project's active sprint, or nil.
func (p *Project) ActiveSprint() *Sprint {
	for i := range p.Sprints {
		if p.Sprints[i].Status == SprintActive {
			return &p.Sprints[i]
		}
	}
	return nil
}

// FindSprint returns the sprint with the given id, or nil.
func (p *Project) FindSprint(id string) *Sprint {
	for i := range p.Sprints {
		if p.Sprints[i].ID == id {
			return &p.Sprints[i]
		}
	}
	return nil
}

// TotalBacklogPoints sums story points across the backlog.
func (p *Project) TotalBacklogPoints() int {
	total := 0
	for _, s := range p.Backlog {
		total += s.StoryPoints
	}
	return total
}
