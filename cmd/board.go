package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/models"
	"github.com/scrumebox/scrume/internal/output"
)

var boardCmd = &cobra.Command{
	Use:   "board <project>",
	Short: "Show the active sprint's board",
	Long:  "Render the active sprint's stories in To Do, In Progress, and Done columns.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return boardRun(args[0])
	},
}

var boardMoveCmd = &cobra.Command{
	Use:   "move <story> <status>",
	Short: "Move a story to another board column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return boardMoveRun(args[0], args[1])
	},
}

func init() {
	boardCmd.AddCommand(boardMoveCmd)
	rootCmd.AddCommand(boardCmd)
}

func boardRun(projectRef string) error {
	c, err := getController()
	if err != nil {
		return err
	}
	p, err := resolveProject(c, projectRef)
	if err != nil {
		return err
	}

	sprint := p.ActiveSprint()
	if sprint == nil {
		ui.Info("No active sprint in %s. Start one with 'scrume sprint start'.", p.Name)
		return nil
	}

	fmt.Fprintf(ui.Out, "%s / %s  %s\n\n", output.Cyan(p.Name), sprint.Name,
		output.ProgressBar(sprint.Progress(), 20))

	columns := make([][]models.UserStory, len(models.BoardColumns))
	rows := 0
	for i, col := range models.BoardColumns {
		columns[i] = sprint.StoriesByStatus(col)
		if len(columns[i]) > rows {
			rows = len(columns[i])
		}
	}

	headers := make([]string, len(models.BoardColumns))
	for i, col := range models.BoardColumns {
		headers[i] = fmt.Sprintf("%s (%d)", col, len(columns[i]))
	}

	table := ui.Table(headers)
	for r := 0; r < rows; r++ {
		row := make([]string, len(columns))
		for i := range columns {
			if r < len(columns[i]) {
				st := &columns[i][r]
				row[i] = fmt.Sprintf("%s [%dpt] %s", st.Title, st.StoryPoints, shortID(st.ID))
			}
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

func boardMoveRun(storyRef, statusArg string) error {
	c, err := getController()
	if err != nil {
		return err
	}

	status, err := models.ParseStoryStatus(statusArg)
	if err != nil {
		return err
	}

	st, err := resolveStoryAnywhere(c, storyRef)
	if err != nil {
		return err
	}

	if err := c.MoveStoryStatus(st.ID, status); err != nil {
		return err
	}
	ui.Success("Moved %s to %s", output.Cyan(st.Title), output.StoryStatusColor(status))
	return nil
}
