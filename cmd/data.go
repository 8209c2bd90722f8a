package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/output"
)

var dataForce bool

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage the encrypted data file",
}

var dataInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show storage size and modification time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dataInfoRun()
	},
}

var dataClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all projects and the data file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dataClearRun()
	},
}

var dataSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Replace current data with sample projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dataSampleRun()
	},
}

func init() {
	dataClearCmd.Flags().BoolVarP(&dataForce, "force", "f", false, "Skip confirmation")
	dataSampleCmd.Flags().BoolVarP(&dataForce, "force", "f", false, "Skip confirmation")

	dataCmd.AddCommand(dataInfoCmd)
	dataCmd.AddCommand(dataClearCmd)
	dataCmd.AddCommand(dataSampleCmd)
	rootCmd.AddCommand(dataCmd)
}

func dataInfoRun() error {
	c, err := getController()
	if err != nil {
		return err
	}

	size, modified := c.StorageInfo()
	stories := 0
	sprints := 0
	for _, p := range c.Projects() {
		stories += len(p.Backlog)
		sprints += len(p.Sprints)
		for _, s := range p.Sprints {
			stories += len(s.Stories)
		}
	}

	fmt.Fprintf(ui.Out, "Data file:  %s\n", dataFilePath())
	fmt.Fprintf(ui.Out, "Size:       %d bytes\n", size)
	fmt.Fprintf(ui.Out, "Modified:   %s\n", modified)
	fmt.Fprintf(ui.Out, "Projects:   %d\n", len(c.Projects()))
	fmt.Fprintf(ui.Out, "Sprints:    %d\n", sprints)
	fmt.Fprintf(ui.Out, "Stories:    %d\n", stories)
	return nil
}

func dataClearRun() error {
	c, err := getController()
	if err != nil {
		return err
	}

	if !dataForce && !confirm("Delete ALL projects and the data file?") {
		ui.Info("Aborted.")
		return nil
	}

	if err := c.ClearAll(); err != nil {
		return err
	}
	ui.Success("All data cleared.")
	return nil
}

func dataSampleRun() error {
	c, err := getController()
	if err != nil {
		return err
	}

	if len(c.Projects()) > 0 && !dataForce && !confirm("Replace existing projects with sample data?") {
		ui.Info("Aborted.")
		return nil
	}

	if err := c.LoadSampleData(); err != nil {
		return err
	}
	ui.Success("Loaded %d sample project(s).", len(c.Projects()))
	for _, p := range c.Projects() {
		fmt.Fprintf(ui.Out, "  %s (%s)\n", output.Cyan(p.Name), shortID(p.ID))
	}
	return nil
}

// confirm prompts on stdin and accepts y/yes.
func confirm(question string) bool {
	fmt.Fprintf(ui.Out, "%s [y/N] ", question)
	var answer string
	if _, err := fmt.Scanln(&answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
