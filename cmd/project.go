package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/output"
)

var (
	projectDescription string
	projectWeeks       int
	projectName        string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage scrum projects",
	Long:  "Create, list, show, edit, and delete scrum projects.",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectCreateRun(args[0])
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show detailed project information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(args[0])
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Edit a project's name, description, or sprint duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectEditRun(cmd, args[0])
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:     "delete <project>",
	Aliases: []string{"rm"},
	Short:   "Delete a project and everything it contains",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectDeleteRun(args[0])
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectDescription, "desc", "", "Project description")
	projectCreateCmd.Flags().IntVar(&projectWeeks, "weeks", 2, "Sprint duration in weeks (1-4)")

	projectEditCmd.Flags().StringVar(&projectName, "name", "", "New project name")
	projectEditCmd.Flags().StringVar(&projectDescription, "desc", "", "New project description")
	projectEditCmd.Flags().IntVar(&projectWeeks, "weeks", 0, "New sprint duration in weeks (1-4)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectCreateRun(name string) error {
	c, err := getController()
	if err != nil {
		return err
	}

	p, err := c.CreateProject(name, projectDescription, projectWeeks)
	if err != nil {
		return err
	}

	ui.Success("Created project: %s (%d-week sprints)", output.Cyan(p.Name), p.SprintDurationWeeks)
	ui.VerboseLog("ID: %s", p.ID)
	return nil
}

func projectListRun() error {
	c, err := getController()
	if err != nil {
		return err
	}

	projects := c.Projects()
	if len(projects) == 0 {
		ui.Info("No projects yet. Use 'scrume project create <name>' to get started.")
		return nil
	}

	table := ui.Table([]string{"Name", "Sprints", "Backlog", "Points", "Members", "Active Sprint", "ID"})
	for i := range projects {
		p := &projects[i]
		active := "-"
		if s := p.ActiveSprint(); s != nil {
			active = s.Name
		}
		table.Append([]string{
			output.Cyan(p.Name),
			fmt.Sprintf("%d", len(p.Sprints)),
			fmt.Sprintf("%d", len(p.Backlog)),
			fmt.Sprintf("%d", p.TotalBacklogPoints()),
			fmt.Sprintf("%d", len(p.Members)),
			active,
			shortID(p.ID),
		})
	}
	table.Render()
	return nil
}

func projectShowRun(ref string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(p.Name))
	if p.Description != "" {
		fmt.Fprintf(ui.Out, "  Desc:      %s\n", p.Description)
	}
	fmt.Fprintf(ui.Out, "  Duration:  %d week(s) per sprint\n", p.SprintDurationWeeks)
	fmt.Fprintf(ui.Out, "  Created:   %s\n", p.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(ui.Out, "  Updated:   %s\n", p.UpdatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(ui.Out, "  ID:        %s\n", p.ID)
	fmt.Fprintln(ui.Out)

	if active := p.ActiveSprint(); active != nil {
		fmt.Fprintf(ui.Out, "  Active sprint: %s  %s\n", active.Name,
			output.ProgressBar(active.Progress(), 20))
	}
	fmt.Fprintf(ui.Out, "  Backlog:   %d stories, %d points\n",
		len(p.Backlog), p.TotalBacklogPoints())
	fmt.Fprintf(ui.Out, "  Sprints:   %d\n", len(p.Sprints))
	fmt.Fprintf(ui.Out, "  Members:   %d\n", len(p.Members))
	return nil
}

func projectEditRun(cmd *cobra.Command, ref string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, ref)
	if err != nil {
		return err
	}

	updated := *p
	if cmd.Flags().Changed("name") {
		updated.Name = projectName
	}
	if cmd.Flags().Changed("desc") {
		updated.Description = projectDescription
	}
	if cmd.Flags().Changed("weeks") {
		updated.SprintDurationWeeks = projectWeeks
	}

	if err := c.UpdateProject(updated); err != nil {
		return err
	}
	ui.Success("Updated project: %s", output.Cyan(updated.Name))
	return nil
}

func projectDeleteRun(ref string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, ref)
	if err != nil {
		return err
	}

	name := p.Name
	if err := c.DeleteProject(p.ID); err != nil {
		return err
	}
	ui.Success("Deleted project: %s", output.Cyan(name))
	return nil
}
