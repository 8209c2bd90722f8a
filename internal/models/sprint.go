package models

import "time"

// SprintStatus represents the lifecycle state of a sprint.
//
// Valid transitions: Planning -> Active -> Completed,
// Planning -> Cancelled, Active -> Cancelled. Completed and Cancelled
// are terminal. At most one sprint per project is Active at any time;
// that invariant is enforced by the controller's StartSprint.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "Planning"
	SprintActive    SprintStatus = "Active"
	SprintCompleted SprintStatus = "Completed"
	SprintCancelled SprintStatus = "Cancelled"
)

// Terminal reports whether no further transitions may leave the status.
func (s SprintStatus) Terminal() bool {
	return s == SprintCompleted || s == SprintCancelled
}

// Sprint is a time-boxed container of stories owned by a project.
type Sprint struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	StartDate *time.Time   `json:"startDate,omitempty"`
	EndDate   *time.Time   `json:"endDate,omitempty"`
	Status    SprintStatus `json:"status"`
	Stories   []UserStory  `json:"stories"`
}

// NewSprint constructs a sprint in Planning with a fresh id.
func NewSprint(name, goal string) Sprint {
	return Sprint{
		ID:     NewID(),
		Name:   name,
		Goal:   goal,
		Status: SprintPlanning,
	}
}

// FindStory returns the story with the given id, or nil.
func (s *Sprint) FindStory(id string) *UserStory {
	for i := range s.Stories {
		if s.Stories[i].ID == id {
			return &s.Stories[i]
		}
	}
	return nil
}

// TotalPoints sums story points across the sprint's stories.
func (s *Sprint) TotalPoints() int {
	total := 0
	for _, st := range s.Stories {
		total += st.StoryPoints
	}
	return total
}

// CompletedPoints sums story points of Done stories.
func (s *Sprint) CompletedPoints() int {
	total := 0
	for _, st := range s.Stories {
		if st.Status == StoryDone {
			total += st.StoryPoints
		}
	}
	return total
}

// Progress returns completed points as a percentage of total points.
func (s *Sprint) Progress() float64 {
	total := s.TotalPoints()
	if total == 0 {
		return 0
	}
	return float64(s.CompletedPoints()) / float64(total) * 100
}

// StoriesByStatus returns the sprint's stories in the given board column.
func (s *Sprint) StoriesByStatus(status StoryStatus) []UserStory {
	var out []UserStory
	for _, st := range s.Stories {
		if st.Status == status {
			out = append(out, st)
		}
	}
	return out
}
