package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/scrum"
)

// refMatches reports whether a lowercased user reference matches an
// entity loosely: id prefix, id suffix (the shortID display form), or
// display-name prefix.
func refMatches(id, name, lowerRef string) bool {
	lowID := strings.ToLower(id)
	return strings.HasPrefix(lowID, lowerRef) ||
		strings.HasSuffix(lowID, lowerRef) ||
		strings.HasPrefix(strings.ToLower(name), lowerRef)
}

// resolveProject finds a project by id, exact name, or unique loose
// reference.
func resolveProject(c *scrum.Controller, ref string) (*models.Project, error) {
	projects := c.Projects()
	for i := range projects {
		if projects[i].ID == ref || strings.EqualFold(projects[i].Name, ref) {
			return &projects[i], nil
		}
	}

	var matches []*models.Project
	lower := strings.ToLower(ref)
	for i := range projects {
		if refMatches(projects[i].ID, projects[i].Name, lower) {
			matches = append(matches, &projects[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("project not found: %s", ref)
	default:
		return nil, fmt.Errorf("project reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveSprint finds a sprint within a project by id, exact name, or
// unique loose reference.
func resolveSprint(p *models.Project, ref string) (*models.Sprint, error) {
	for i := range p.Sprints {
		if p.Sprints[i].ID == ref || strings.EqualFold(p.Sprints[i].Name, ref) {
			return &p.Sprints[i], nil
		}
	}

	var matches []*models.Sprint
	lower := strings.ToLower(ref)
	for i := range p.Sprints {
		if refMatches(p.Sprints[i].ID, p.Sprints[i].Name, lower) {
			matches = append(matches, &p.Sprints[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("sprint not found in %s: %s", p.Name, ref)
	default:
		return nil, fmt.Errorf("sprint reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveStory finds a story in a project's backlog or sprints by id,
// exact title, or unique loose reference.
func resolveStory(p *models.Project, ref string) (*models.UserStory, error) {
	var all []*models.UserStory
	for i := range p.Backlog {
		all = append(all, &p.Backlog[i])
	}
	for i := range p.Sprints {
		for j := range p.Sprints[i].Stories {
			all = append(all, &p.Sprints[i].Stories[j])
		}
	}

	for _, st := range all {
		if st.ID == ref || strings.EqualFold(st.Title, ref) {
			return st, nil
		}
	}

	var matches []*models.UserStory
	lower := strings.ToLower(ref)
	for _, st := range all {
		if refMatches(st.ID, st.Title, lower) {
			matches = append(matches, st)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("story not found in %s: %s", p.Name, ref)
	default:
		return nil, fmt.Errorf("story reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveStoryAnywhere finds a story across all loaded projects.
func resolveStoryAnywhere(c *scrum.Controller, ref string) (*models.UserStory, error) {
	projects := c.Projects()
	var found *models.UserStory
	matches := 0
	for i := range projects {
		if st, err := resolveStory(&projects[i], ref); err == nil {
			found = st
			matches++
		}
	}
	switch matches {
	case 1:
		return found, nil
	case 0:
		return nil, fmt.Errorf("story not found: %s", ref)
	default:
		return nil, fmt.Errorf("story reference %q is ambiguous across projects", ref)
	}
}

// resolveMember finds a member within a project by id, exact name, or
// unique loose reference.
func resolveMember(p *models.Project, ref string) (*models.TeamMember, error) {
	for i := range p.Members {
		if p.Members[i].ID == ref || strings.EqualFold(p.Members[i].Name, ref) {
			return &p.Members[i], nil
		}
	}

	var matches []*models.TeamMember
	lower := strings.ToLower(ref)
	for i := range p.Members {
		if refMatches(p.Members[i].ID, p.Members[i].Name, lower) {
			matches = append(matches, &p.Members[i])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("member not found in %s: %s", p.Name, ref)
	default:
		return nil, fmt.Errorf("member reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveCriterion finds an acceptance criterion on a story by id,
// exact description, or unique loose reference.
func resolveCriterion(st *models.UserStory, ref string) (*models.AcceptanceCriterion, error) {
	for i := range st.AcceptanceCriteria {
		ac := &st.AcceptanceCriteria[i]
		if ac.ID == ref || strings.EqualFold(ac.Description, ref) {
			return ac, nil
		}
	}

	var matches []*models.AcceptanceCriterion
	lower := strings.ToLower(ref)
	for i := range st.AcceptanceCriteria {
		ac := &st.AcceptanceCriteria[i]
		if refMatches(ac.ID, ac.Description, lower) {
			matches = append(matches, ac)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("criterion not found on %s: %s", st.Title, ref)
	default:
		return nil, fmt.Errorf("criterion reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// shortID returns the trailing, high-entropy part of a ULID for
// compact display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// formatDate renders an optional date, or a dash when unset.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
