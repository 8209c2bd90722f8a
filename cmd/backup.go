package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrumebox/scrume/internal/output"
)

var exportOut string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and import plaintext backups",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as readable JSON",
	Long:  "Write every project as plaintext, deterministically ordered JSON for backup or transfer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import projects from a JSON export, replacing current data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRun(args[0])
	},
}

func init() {
	backupExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default scrume-export-<date>.json)")

	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
	rootCmd.AddCommand(backupCmd)
}

func exportRun() error {
	c, err := getController()
	if err != nil {
		return err
	}

	data, err := c.ExportData()
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = fmt.Sprintf("scrume-export-%s.json", time.Now().Format("2006-01-02"))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	ui.Success("Exported %d project(s) to %s", len(c.Projects()), output.Cyan(path))
	return nil
}

func importRun(path string) error {
	c, err := getController()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	if err := c.ImportData(data); err != nil {
		return err
	}
	ui.Success("Imported %d project(s) from %s", len(c.Projects()), output.Cyan(path))
	return nil
}
