package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/output"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Project reports",
}

var reportVelocityCmd = &cobra.Command{
	Use:   "velocity <project>",
	Short: "Show completed points per finished sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportVelocityRun(args[0])
	},
}

var reportSprintCmd = &cobra.Command{
	Use:   "sprint <project> <sprint>",
	Short: "Show a single sprint's progress breakdown",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportSprintRun(args[0], args[1])
	},
}

var reportProgressCmd = &cobra.Command{
	Use:   "progress <project>",
	Short: "Show progress for every non-terminal sprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportProgressRun(args[0])
	},
}

func init() {
	reportCmd.AddCommand(reportVelocityCmd)
	reportCmd.AddCommand(reportSprintCmd)
	reportCmd.AddCommand(reportProgressCmd)
	rootCmd.AddCommand(reportCmd)
}

func reportVelocityRun(projectRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	var completed []*models.Sprint
	for i := range p.Sprints {
		if p.Sprints[i].Status == models.SprintCompleted {
			completed = append(completed, &p.Sprints[i])
		}
	}
	if len(completed) == 0 {
		ui.Info("No completed sprints in %s yet.", p.Name)
		return nil
	}

	total := 0
	table := ui.Table([]string{"Sprint", "Completed", "Start", "End"})
	for _, s := range completed {
		pts := s.CompletedPoints()
		total += pts
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%d pts", pts),
			formatDate(s.StartDate),
			formatDate(s.EndDate),
		})
	}
	table.Render()

	avg := float64(total) / float64(len(completed))
	fmt.Fprintf(ui.Out, "\nAverage velocity: %s over %d sprint(s)\n",
		output.Green(fmt.Sprintf("%.1f pts", avg)), len(completed))
	return nil
}

func reportSprintRun(projectRef, sprintRef string) error {
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

	fmt.Fprintf(ui.Out, "%s / %s  [%s]\n", output.Cyan(p.Name), s.Name,
		output.SprintStatusColor(s.Status))
	fmt.Fprintf(ui.Out, "  Dates:    %s to %s\n", formatDate(s.StartDate), formatDate(s.EndDate))
	fmt.Fprintf(ui.Out, "  Progress: %s  %d/%d pts\n\n",
		output.ProgressBar(s.Progress(), 30), s.CompletedPoints(), s.TotalPoints())

	table := ui.Table([]string{"Status", "Stories", "Points"})
	for _, col := range models.BoardColumns {
		stories := s.StoriesByStatus(col)
		pts := 0
		for i := range stories {
			pts += stories[i].StoryPoints
		}
		table.Append([]string{
			output.StoryStatusColor(col),
			fmt.Sprintf("%d", len(stories)),
			fmt.Sprintf("%d", pts),
		})
	}
	table.Render()
	return nil
}

func reportProgressRun(projectRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	shown := 0
	for i := range p.Sprints {
		s := &p.Sprints[i]
		if s.Status.Terminal() {
			continue
		}
		shown++
		fmt.Fprintf(ui.Out, "%s  [%s]\n", output.Cyan(s.Name), output.SprintStatusColor(s.Status))
		fmt.Fprintf(ui.Out, "  %s  %d/%d pts, %d stories\n\n",
			output.ProgressBar(s.Progress(), 30),
			s.CompletedPoints(), s.TotalPoints(), len(s.Stories))
	}
	if shown == 0 {
		ui.Info("No planning or active sprints in %s.", p.Name)
	}
	return nil
}
