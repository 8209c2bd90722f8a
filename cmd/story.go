package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/output"
	"github.com/scrumebox/scrume/internal/scrum"
)

var (
	storyDescription string
	storyPriority    string
	storyPoints      int
	storyTags        []string
	storyAssignees   []string
	storyTitle       string
	storyStatus      string
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Manage user stories",
	Long:  "Add, list, edit, and delete user stories and their acceptance criteria.",
}

var storyAddCmd = &cobra.Command{
	Use:   "add <project> <title>",
	Short: "Add a story to the project backlog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storyAddRun(args[0], args[1])
	},
}

var storyListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List a project's stories, backlog first",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storyListRun(args[0])
	},
}

var storyShowCmd = &cobra.Command{
	Use:   "show <project> <story>",
	Short: "Show a story with its acceptance criteria",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storyShowRun(args[0], args[1])
	},
}

var storyEditCmd = &cobra.Command{
	Use:   "edit <project> <story>",
	Short: "Edit a story's fields",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storyEditRun(cmd, args[0], args[1])
	},
}

var storyDeleteCmd = &cobra.Command{
	Use:     "delete <project> <story>",
	Aliases: []string{"rm"},
	Short:   "Delete a story wherever it lives",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return storyDeleteRun(args[0], args[1])
	},
}

var criterionCmd = &cobra.Command{
	Use:     "criterion",
	Aliases: []string{"ac"},
	Short:   "Manage a story's acceptance criteria",
}

var criterionAddCmd = &cobra.Command{
	Use:   "add <project> <story> <description>",
	Short: "Add an acceptance criterion",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return criterionAddRun(args[0], args[1], args[2])
	},
}

var criterionToggleCmd = &cobra.Command{
	Use:   "toggle <project> <story> <criterion-id>",
	Short: "Toggle a criterion's completion",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return criterionToggleRun(args[0], args[1], args[2])
	},
}

var criterionRemoveCmd = &cobra.Command{
	Use:     "remove <project> <story> <criterion-id>",
	Aliases: []string{"rm"},
	Short:   "Remove an acceptance criterion",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return criterionRemoveRun(args[0], args[1], args[2])
	},
}

func init() {
	storyAddCmd.Flags().StringVar(&storyDescription, "desc", "", "Story description")
	storyAddCmd.Flags().StringVar(&storyPriority, "priority", "medium", "Priority (low, medium, high, critical)")
	storyAddCmd.Flags().IntVar(&storyPoints, "points", 1, "Story points (1, 2, 3, 5, 8, 13, 21)")
	storyAddCmd.Flags().StringSliceVar(&storyTags, "tag", nil, "Tags (repeatable)")
	storyAddCmd.Flags().StringSliceVar(&storyAssignees, "assign", nil, "Assignee member references (repeatable)")

	storyEditCmd.Flags().StringVar(&storyTitle, "title", "", "New title")
	storyEditCmd.Flags().StringVar(&storyDescription, "desc", "", "New description")
	storyEditCmd.Flags().StringVar(&storyPriority, "priority", "", "New priority")
	storyEditCmd.Flags().IntVar(&storyPoints, "points", 0, "New points")
	storyEditCmd.Flags().StringVar(&storyStatus, "status", "", "New status (todo, in-progress, done)")

	criterionCmd.AddCommand(criterionAddCmd)
	criterionCmd.AddCommand(criterionToggleCmd)
	criterionCmd.AddCommand(criterionRemoveCmd)

	storyCmd.AddCommand(storyAddCmd)
	storyCmd.AddCommand(storyListCmd)
	storyCmd.AddCommand(storyShowCmd)
	storyCmd.AddCommand(storyEditCmd)
	storyCmd.AddCommand(storyDeleteCmd)
	storyCmd.AddCommand(criterionCmd)
	rootCmd.AddCommand(storyCmd)
}

func storyAddRun(projectRef, title string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	priority, err := models.ParsePriority(storyPriority)
	if err != nil {
		return err
	}

	assignees := make([]string, 0, len(storyAssignees))
	for _, ref := range storyAssignees {
		m, err := resolveMember(p, ref)
		if err != nil {
			return err
		}
		assignees = append(assignees, m.ID)
	}

	st, err := c.AddStory(p.ID, scrum.StoryInput{
		Title:       title,
		Description: storyDescription,
		Priority:    priority,
		Points:      storyPoints,
		Tags:        storyTags,
		AssigneeIDs: assignees,
	})
	if err != nil {
		return err
	}

	ui.Success("Added story: %s (%d points)", output.Cyan(st.Title), st.StoryPoints)
	if st.StoryPoints != storyPoints {
		ui.Warning("Points %d are not on the scale 1,2,3,5,8,13,21; stored as %d.", storyPoints, st.StoryPoints)
	}
	ui.VerboseLog("ID: %s", st.ID)
	return nil
}

func storyListRun(projectRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	if len(p.Backlog) == 0 && len(p.Sprints) == 0 {
		ui.Info("No stories in %s.", p.Name)
		return nil
	}

	table := ui.Table([]string{"Title", "Location", "Status", "Priority", "Points", "AC", "ID"})
	appendStory := func(st *models.UserStory, location string) {
		table.Append([]string{
			st.Title,
			location,
			output.StoryStatusColor(st.Status),
			output.PriorityColor(st.Priority),
			fmt.Sprintf("%d", st.StoryPoints),
			fmt.Sprintf("%d/%d", st.CompletedCriteria(), len(st.AcceptanceCriteria)),
			shortID(st.ID),
		})
	}
	for i := range p.Backlog {
		appendStory(&p.Backlog[i], "Backlog")
	}
	for i := range p.Sprints {
		s := &p.Sprints[i]
		for j := range s.Stories {
			appendStory(&s.Stories[j], s.Name)
		}
	}
	table.Render()
	return nil
}

func storyShowRun(projectRef, storyRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	st, err := resolveStory(p, storyRef)
	if err != nil {
		return err
	}

	location := "Backlog"
	if st.SprintID != "" {
		if s := p.FindSprint(st.SprintID); s != nil {
			location = s.Name
		}
	}

	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(st.Title))
	if st.Description != "" {
		fmt.Fprintf(ui.Out, "  Desc:     %s\n", st.Description)
	}
	fmt.Fprintf(ui.Out, "  Location: %s\n", location)
	fmt.Fprintf(ui.Out, "  Status:   %s\n", output.StoryStatusColor(st.Status))
	fmt.Fprintf(ui.Out, "  Priority: %s\n", output.PriorityColor(st.Priority))
	fmt.Fprintf(ui.Out, "  Points:   %d\n", st.StoryPoints)
	if len(st.Tags) > 0 {
		fmt.Fprintf(ui.Out, "  Tags:     %s\n", strings.Join(st.Tags, ", "))
	}
	if len(st.AssigneeIDs) > 0 {
		names := make([]string, 0, len(st.AssigneeIDs))
		for _, id := range st.AssigneeIDs {
			found := false
			for i := range p.Members {
				if p.Members[i].ID == id {
					names = append(names, p.Members[i].Name)
					found = true
					break
				}
			}
			if !found {
				names = append(names, shortID(id))
			}
		}
		fmt.Fprintf(ui.Out, "  Assigned: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(ui.Out, "  ID:       %s\n", st.ID)

	if len(st.AcceptanceCriteria) > 0 {
		fmt.Fprintf(ui.Out, "\n  Acceptance criteria (%d/%d):\n",
			st.CompletedCriteria(), len(st.AcceptanceCriteria))
		for i := range st.AcceptanceCriteria {
			ac := &st.AcceptanceCriteria[i]
			mark := " "
			if ac.Completed {
				mark = "x"
			}
			fmt.Fprintf(ui.Out, "    [%s] %s  (%s)\n", mark, ac.Description, shortID(ac.ID))
		}
	}
	return nil
}

func storyEditRun(cmd *cobra.Command, projectRef, storyRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	st, err := resolveStory(p, storyRef)
	if err != nil {
		return err
	}

	updated := *st
	if cmd.Flags().Changed("title") {
		updated.Title = storyTitle
	}
	if cmd.Flags().Changed("desc") {
		updated.Description = storyDescription
	}
	if cmd.Flags().Changed("priority") {
		priority, err := models.ParsePriority(storyPriority)
		if err != nil {
			return err
		}
		updated.Priority = priority
	}
	if cmd.Flags().Changed("points") {
		updated.StoryPoints = storyPoints
	}
	if cmd.Flags().Changed("status") {
		status, err := models.ParseStoryStatus(storyStatus)
		if err != nil {
			return err
		}
		updated.Status = status
	}

	if err := c.UpdateStory(p.ID, updated); err != nil {
		return err
	}
	ui.Success("Updated story: %s", output.Cyan(updated.Title))
	return nil
}

func storyDeleteRun(projectRef, storyRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	st, err := resolveStory(p, storyRef)
	if err != nil {
		return err
	}

	title := st.Title
	if err := c.DeleteStory(p.ID, st.ID); err != nil {
		return err
	}
	ui.Success("Deleted story: %s", output.Cyan(title))
	return nil
}

func criterionAddRun(projectRef, storyRef, description string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	st, err := resolveStory(p, storyRef)
	if err != nil {
		return err
	}

	if err := c.AddCriterion(p.ID, st.ID, description); err != nil {
		return err
	}
	ui.Success("Added criterion to %s", output.Cyan(st.Title))
	return nil
}

func criterionToggleRun(projectRef, storyRef, criterionRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	st, err := resolveStory(p, storyRef)
	if err != nil {
		return err
	}
	ac, err := resolveCriterion(st, criterionRef)
	if err != nil {
		return err
	}

	if err := c.ToggleCriterion(p.ID, st.ID, ac.ID); err != nil {
		return err
	}
	state := "done"
	if ac.Completed {
		state = "pending"
	}
	ui.Success("Criterion now %s: %s", state, ac.Description)
	return nil
}

func criterionRemoveRun(projectRef, storyRef, criterionRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	st, err := resolveStory(p, storyRef)
	if err != nil {
		return err
	}
	ac, err := resolveCriterion(st, criterionRef)
	if err != nil {
		return err
	}

	if err := c.RemoveCriterion(p.ID, st.ID, ac.ID); err != nil {
		return err
	}
	ui.Success("Removed criterion from %s", output.Cyan(st.Title))
	return nil
}
