package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority represents story urgency, ordered Low < Medium < High < Critical.
type Priority int

const (
	PriorityLow      Priority = 0
	PriorityMedium   Priority = 1
	PriorityHigh     Priority = 2
	PriorityCritical Priority = 3
)

// String returns the display name for a priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// ParsePriority parses a case-insensitive priority name.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical", "crit":
		return PriorityCritical, nil
	default:
		return 0, fmt.Errorf("unknown priority %q (low|medium|high|critical)", s)
	}
}

// StoryStatus represents a story's board column. It is distinct from
/// SprintStatus: a story progresses Todo -> InProgress -> Done within
// whatever container holds it.
type StoryStatus string

const (
	StoryTodo       StoryStatus = "To Do"
	StoryInProgress StoryStatus = "In Progress"
	StoryDone       StoryStatus = "Done"
)

// BoardColumns lists story statuses in board order.
var BoardColumns = []StoryStatus{StoryTodo, StoryInProgress, StoryDone}

// ParseStoryStatus parses a case-insensitive story status name.
func ParseStoryStatus(s string) (StoryStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to do", "to-do":
		return StoryTodo, nil
	case "inprogress", "in progress", "in-progress", "doing":
		return StoryInProgress, nil
	case "done":
		return StoryDone, nil
	default:
		return "", fmt.Errorf("unknown story status %q (todo|in-progress|done)", s)
	}
}

// ValidPoints is the fixed set of accepted story point values.
var ValidPoints = []int{1, 2, 3, 5, 8, 13, 21}

// NormalizePoints coerces an estimate onto the valid point scale.
// Values outside the scale silently become 1.
func NormalizePoints(points int) int {
	for _, v := range ValidPoints {
		if points == v {
			return points
		}
	}
	return 1
}

// UserStory is a unit of backlog or sprint work. A story lives in
// exactly one of project backlog or one sprint's story list; SprintID
// is set iff the story resides in that sprint, and empty in backlog.
// AssigneeIDs are weak references to team member ids and are not
// validated at write time.
type UserStory struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Priority           Priority              `json:"priority"`
	StoryPoints        int                   `json:"storyPoints"`
	Status             StoryStatus           `json:"status"`
	AssigneeIDs        []string              `json:"assigneeIds"`
	SprintID           string                `json:"sprintId,omitempty"`
	AcceptanceCriteria []AcceptanceCriterion `json:"acceptanceCriteria"`
	Tags               []string              `json:"tags"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

// NewStory constructs a backlog story with a fresh id, normalized
// points, and current timestamps.
func NewStory(title, description string, priority Priority, points int) UserStory {
	now := time.Now().UTC()
	return UserStory{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Priority:    priority,
		StoryPoints: NormalizePoints(points),
		Status:      StoryTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CompletedCriteria counts acceptance criteria marked complete.
func (s *UserStory) CompletedCriteria() int {
	n := 0
	for _, c := range s.AcceptanceCriteria {
		if c.Completed {
			n++
		}
	}
	return n
}

// CriteriaProgress returns the completed fraction of acceptance
// criteria in [0,1], or 0 when there are none.
func (s *UserStory) CriteriaProgress() float64 {
	if len(s.AcceptanceCriteria) == 0 {
		return 0
	}
	return float64(s.CompletedCriteria()) / float64(len(s.AcceptanceCriteria))
}
