package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taming/internal/export"
	"taming/internal/protocol"
)

var (
	exportFormat string
	exportOut    string
	exportYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export a run as a shareable document",
	Long: `Exports the given run (or the most recent one) as JSON or YAML. Failed
runs are refused; runs with validation warnings require --yes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: exportRun,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
	exportCmd.Flags().BoolVarP(&exportYes, "yes", "y", false, "export despite validation warnings")
}

func exportRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()

	var run protocol.Run
	if len(args) == 1 {
		var ok bool
		run, ok = state.FindRun(args[0])
		if !ok {
			return fmt.Errorf("run %s not found", args[0])
		}
	} else {
		if len(state.Runs) == 0 {
			return fmt.Errorf("no runs to export")
		}
		run = state.Runs[0]
	}

	if err := export.Guard(protocol.StatusForRun(run), exportYes); err != nil {
		if errors.Is(err, export.ErrConfirmationRequired) {
			return fmt.Errorf("%w (re-run with --yes to acknowledge)", err)
		}
		return err
	}

	var format export.Format
	switch exportFormat {
	case "json":
		format = export.FormatJSON
	case "yaml", "yml":
		format = export.FormatYAML
	default:
		return fmt.Errorf("unsupported format %q (want json or yaml)", exportFormat)
	}

	data, err := export.Render(export.Bundle(run), format)
	if err != nil {
		return err
	}

	if exportOut != "" {
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported run %s to %s.\n", run.ID, exportOut)
		return nil
	}
	_, err = os.Stdout.Write(data)
	return err
}
