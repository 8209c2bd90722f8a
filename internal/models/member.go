package models

import (
	"fmt"
	"strings"
)

// Role represents a team member's scrum role.
type Role string

const (
	RoleProductOwner Role = "Product Owner"
	RoleScrumMaster  Role = "Scrum Master"
	RoleDeveloper    Role = "Developer"
	RoleDesigner     Role = "Designer"
	RoleTester       Role = "QA Tester"
)

// ParseRole parses a case-insensitive role name.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "product owner", "product-owner", "po", "owner":
		return RoleProductOwner, nil
	case "scrum master", "scrum-master", "sm", "master":
		return RoleScrumMaster, nil
	case "developer", "dev":
		return RoleDeveloper, nil
	case "designer", "design":
		return RoleDesigner, nil
	case "qa tester", "qa", "tester", "test":
		return RoleTester, nil
	default:
		return "", fmt.Errorf("unknown role %q (po|sm|developer|designer|qa)", s)
	}
}

// DefaultAvatarColor is the hex color assigned when none is given.
const DefaultAvatarColor = "007AFF"

// TeamMember belongs to exactly one project; members are not shared
// across projects.
type TeamMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	AvatarColor string `json:"avatarColor"`
}

// NewMember constructs a team member with a fresh id.
func NewMember(name, email string, role Role, avatarColor string) TeamMember {
	if avatarColor == "" {
		avatarColor = DefaultAvatarColor
	}
	return TeamMember{
		ID:          NewID(),
		Name:        name,
		Email:       email,
		Role:        role,
		AvatarColor: avatarColor,
	}
}

// Initials returns up to two uppercase initials for avatar rendering.
func (m TeamMember) Initials() string {
	parts := strings.Fields(m.Name)
	if len(parts) >= 2 {
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[len(parts)-1]))
	}
	r := []rune(m.Name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
