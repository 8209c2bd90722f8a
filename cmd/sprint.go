package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/output"
	"github.com/scrumebox/scrume/internal/scrum"
)

var (
	sprintGoal string
	sprintName string
)

var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Manage sprints within a project",
	Long:  "Create sprints, move them through their lifecycle, and assign backlog stories.",
}

var sprintCreateCmd = &cobra.Command{
	Use:   "create <project> <name>",
	Short: "Create a new sprint in planning state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintCreateRun(args[0], args[1])
	},
}

var sprintListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List a project's sprints",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintListRun(args[0])
	},
}

var sprintShowCmd = &cobra.Command{
	Use:   "show <project> <sprint>",
	Short: "Show a sprint and its stories",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintShowRun(args[0], args[1])
	},
}

var sprintEditCmd = &cobra.Command{
	Use:   "edit <project> <sprint>",
	Short: "Edit a sprint's name or goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintEditRun(cmd, args[0], args[1])
	},
}

var sprintStartCmd = &cobra.Command{
	Use:   "start <project> <sprint>",
	Short: "Start a planning sprint, completing any sprint already active",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintStartRun(args[0], args[1])
	},
}

var sprintCompleteCmd = &cobra.Command{
	Use:   "complete <project> <sprint>",
	Short: "Complete an active sprint, returning unfinished stories to the backlog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintCompleteRun(args[0], args[1])
	},
}

var sprintCancelCmd = &cobra.Command{
	Use:   "cancel <project> <sprint>",
	Short: "Cancel a sprint, returning all its stories to the backlog",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintCancelRun(args[0], args[1])
	},
}

var sprintDeleteCmd = &cobra.Command{
	Use:     "delete <project> <sprint>",
	Aliases: []string{"rm"},
	Short:   "Delete a planning sprint, returning its stories to the backlog",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintDeleteRun(args[0], args[1])
	},
}

var sprintAddStoriesCmd = &cobra.Command{
	Use:   "add-stories <project> <sprint> <story>...",
	Short: "Move backlog stories into a sprint",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sprintAddStoriesRun(args[0], args[1], args[2:])
	},
}

func init() {
	sprintCreateCmd.Flags().StringVar(&sprintGoal, "goal", "", "Sprint goal")

	sprintEditCmd.Flags().StringVar(&sprintName, "name", "", "New sprint name")
	sprintEditCmd.Flags().StringVar(&sprintGoal, "goal", "", "New sprint goal")

	sprintCmd.AddCommand(sprintCreateCmd)
	sprintCmd.AddCommand(sprintListCmd)
	sprintCmd.AddCommand(sprintShowCmd)
	sprintCmd.AddCommand(sprintEditCmd)
	sprintCmd.AddCommand(sprintStartCmd)
	sprintCmd.AddCommand(sprintCompleteCmd)
	sprintCmd.AddCommand(sprintCancelCmd)
	sprintCmd.AddCommand(sprintDeleteCmd)
	sprintCmd.AddCommand(sprintAddStoriesCmd)
	rootCmd.AddCommand(sprintCmd)
}

func sprintCreateRun(projectRef, name string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	s, err := c.CreateSprint(p.ID, name, sprintGoal)
	if err != nil {
		return err
	}
	ui.Success("Created sprint: %s in %s", output.Cyan(s.Name), p.Name)
	ui.VerboseLog("ID: %s", s.ID)
	return nil
}

func sprintListRun(projectRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	if len(p.Sprints) == 0 {
		ui.Info("No sprints in %s.", p.Name)
		return nil
	}

	table := ui.Table([]string{"Name", "Status", "Stories", "Points", "Start", "End", "ID"})
	for i := range p.Sprints {
		s := &p.Sprints[i]
		table.Append([]string{
			s.Name,
			output.SprintStatusColor(s.Status),
			fmt.Sprintf("%d", len(s.Stories)),
			fmt.Sprintf("%d/%d", s.CompletedPoints(), s.TotalPoints()),
			formatDate(s.StartDate),
			formatDate(s.EndDate),
			shortID(s.ID),
		})
	}
	table.Render()
	return nil
}

func sprintShowRun(projectRef, sprintRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	s, err := resolveSprint(p, sprintRef)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  [%s]\n", output.Cyan(s.Name), output.SprintStatusColor(s.Status))
	if s.Goal != "" {
		fmt.Fprintf(ui.Out, "  Goal:     %s\n", s.Goal)
	}
	fmt.Fprintf(ui.Out, "  Dates:    %s to %s\n", formatDate(s.StartDate), formatDate(s.EndDate))
	fmt.Fprintf(ui.Out, "  Points:   %d of %d done\n", s.CompletedPoints(), s.TotalPoints())
	fmt.Fprintf(ui.Out, "  Progress: %s\n", output.ProgressBar(s.Progress(), 20))
	fmt.Fprintf(ui.Out, "  ID:       %s\n", s.ID)
	fmt.Fprintln(ui.Out)

	if len(s.Stories) == 0 {
		ui.Info("No stories in this sprint.")
		return nil
	}

	table := ui.Table([]string{"Title", "Status", "Priority", "Points", "ID"})
	for i := range s.Stories {
		st := &s.Stories[i]
		table.Append([]string{
			st.Title,
			output.StoryStatusColor(st.Status),
			output.PriorityColor(st.Priority),
			fmt.Sprintf("%d", st.StoryPoints),
			shortID(st.ID),
		})
	}
	table.Render()
	return nil
}

func sprintEditRun(cmd *cobra.Command, projectRef, sprintRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	s, err := resolveSprint(p, sprintRef)
	if err != nil {
		return err
	}

	updated := *s
	if cmd.Flags().Changed("name") {
		updated.Name = sprintName
	}
	if cmd.Flags().Changed("goal") {
		updated.Goal = sprintGoal
	}

	if err := c.UpdateSprint(p.ID, updated); err != nil {
		return err
	}
	ui.Success("Updated sprint: %s", output.Cyan(updated.Name))
	return nil
}

func sprintStartRun(projectRef, sprintRef string) error {
	return sprintTransitionRun(projectRef, sprintRef, "Started",
		func(c *scrum.Controller, projectID, sprintID string) error {
			return c.StartSprint(projectID, sprintID)
		})
}

func sprintCompleteRun(projectRef, sprintRef string) error {
	return sprintTransitionRun(projectRef, sprintRef, "Completed",
		func(c *scrum.Controller, projectID, sprintID string) error {
			return c.CompleteSprint(projectID, sprintID)
		})
}

func sprintCancelRun(projectRef, sprintRef string) error {
	return sprintTransitionRun(projectRef, sprintRef, "Cancelled",
		func(c *scrum.Controller, projectID, sprintID string) error {
			return c.CancelSprint(projectID, sprintID)
		})
}

func sprintDeleteRun(projectRef, sprintRef string) error {
	return sprintTransitionRun(projectRef, sprintRef, "Deleted",
		func(c *scrum.Controller, projectID, sprintID string) error {
			return c.DeleteSprint(projectID, sprintID)
		})
}

func sprintTransitionRun(projectRef, sprintRef, verb string,
	fn func(c *scrum.Controller, projectID, sprintID string) error) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	s, err := resolveSprint(p, sprintRef)
	if err != nil {
		return err
	}

	name := s.Name
	if err := fn(c, p.ID, s.ID); err != nil {
		return err
	}
	ui.Success("%s sprint: %s", verb, output.Cyan(name))

	if verb == "Completed" || verb == "Cancelled" {
		if fresh := c.Project(p.ID); fresh != nil {
			ui.Info("Backlog now holds %d stories.", len(fresh.Backlog))
		}
	}
	return nil
}

func sprintAddStoriesRun(projectRef, sprintRef string, storyRefs []string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}
	s, err := resolveSprint(p, sprintRef)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(storyRefs))
	for _, ref := range storyRefs {
		st, err := resolveStory(p, ref)
		if err != nil {
			return err
		}
		if st.SprintID != "" && st.SprintID != s.ID {
			return fmt.Errorf("story %q already belongs to another sprint", st.Title)
		}
		ids = append(ids, st.ID)
	}

	if err := c.MoveStoriesToSprint(p.ID, ids, s.ID); err != nil {
		return err
	}
	ui.Success("Moved %d story(ies) into %s", len(ids), output.Cyan(s.Name))
	return nil
}
