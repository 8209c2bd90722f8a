package models

import "time"

// SampleProjects builds a demo project collection for first-run
// exploration. Fresh ids and timestamps on every call.
func SampleProjects() []Project {
	now := time.Now().UTC()

	members := []TeamMember{
		NewMember("John Smith", "john@email.com", RoleProductOwner, "FF6B6B"),
		NewMember("Sarah Johnson", "sarah@email.com", RoleScrumMaster, "4ECDC4"),
		NewMember("Mike Chen", "mike@email.com", RoleDeveloper, "45B7D1"),
		NewMember("Emily Davis", "emily@email.com", RoleDesigner, "96CEB4"),
		NewMember("Alex Wilson", "alex@email.com", RoleTester, "FFEAA7"),
	}

	login := NewStory("Create login screen", "As a user, I want to login", PriorityHigh, 5)
	login.Status = StoryDone
	login.AcceptanceCriteria = []AcceptanceCriterion{
		completedCriterion("User can enter email and password"),
		completedCriterion("Validation shown for invalid input"),
		NewCriterion("Loading indicator shown while logging in"),
	}
	list := NewStory("Display project list", "As a user, I want to see projects", PriorityHigh, 3)
	list.Status = StoryInProgress
	list.Tags = []string{"UI", "Core"}
	board := NewStory("Create scrum board", "As a developer, I want a Kanban board", PriorityCritical, 8)
	board.Status = StoryInProgress
	board.Tags = []string{"Feature"}
	invite := NewStory("Add team members", "As a PO, I want to add members", PriorityMedium, 3)
	dragDrop := NewStory("Drag & drop tasks", "As a user, I want to drag tasks", PriorityHigh, 5)
	dragDrop.Tags = []string{"UX"}

	sprint := NewSprint("Sprint 1", "Complete core features")
	sprint.Status = SprintActive
	start := now
	end := now.AddDate(0, 0, 14)
	sprint.StartDate = &start
	sprint.EndDate = &end
	for _, story := range []UserStory{login, list, board, invite, dragDrop} {
		story.SprintID = sprint.ID
		sprint.Stories = append(sprint.Stories, story)
	}

	darkMode := NewStory("Dark mode", "Support dark mode", PriorityLow, 2)
	darkMode.Tags = []string{"UI"}
	export := NewStory("Export report", "Export sprint report", PriorityMedium, 5)
	export.Tags = []string{"Feature"}
	burndown := NewStory("Burndown chart", "Show burndown chart", PriorityLow, 8)
	burndown.Tags = []string{"Analytics"}

	main := NewProject("Scrume App", "Scrum project management application", 2)
	main.Members = members
	main.Sprints = []Sprint{sprint}
	main.Backlog = []UserStory{darkMode, export, burndown}

	return []Project{
		main,
		NewProject("E-Commerce App", "Online shopping application", 3),
		NewProject("Chat App", "Messaging application", 1),
	}
}

func completedCriterion(description string) AcceptanceCriterion {
	c := NewCriterion(description)
	c.Completed = true
	return c
}
