package models

import "time"

// AcceptanceCriterion is a checklist item owned by a user story.
type AcceptanceCriterion struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCriterion constructs an incomplete criterion with a fresh id.
func NewCriterion(description string) AcceptanceCriterion {
	return AcceptanceCriterion{
		ID:          NewID(),
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
