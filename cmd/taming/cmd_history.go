package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taming/internal/protocol"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the run history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  listHistory,
}

var historyViewCmd = &cobra.Command{
	Use:   "view [run-id]",
	Short: "Enter replay mode on a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  viewHistory,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Remove a run from history",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteHistory,
}

var historyExitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Leave replay mode and clear the working output",
	RunE:  exitReplay,
}

var reuseJudgment bool

var historyReuseCmd = &cobra.Command{
	Use:   "reuse [run-id]",
	Short: "Load a stored run's input (and optionally its judgment) for a new attempt",
	Args:  cobra.ExactArgs(1),
	RunE:  reuseHistory,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the working state to defaults, keeping history and mode",
	RunE:  resetState,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyExitCmd)
	historyCmd.AddCommand(historyReuseCmd)
	historyReuseCmd.Flags().BoolVar(&reuseJudgment, "judgment", false, "also load the run's confirmed judgment anchor")
}

func listHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()
	if len(state.Runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	for _, r := range state.Runs {
		marker := " "
		if state.ViewingRunID == r.ID {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %-7s  %q\n",
			marker, r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
			protocol.StatusForRun(r), r.Input.Topic)
	}
	return nil
}

func viewHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()
	run, ok := state.FindRun(args[0])
	if !ok {
		return fmt.Errorf("run %s not found", args[0])
	}
	a.session.Dispatch(protocol.ViewRun{ID: run.ID})
	fmt.Printf("Viewing run %s (replay mode; input changes are ignored until you exit).\n", run.ID)
	printRun(run, pipelineStatusFor(run))
	return nil
}

func deleteHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()
	if _, ok := state.FindRun(args[0]); !ok {
		return fmt.Errorf("run %s not found", args[0])
	}
	a.session.Dispatch(protocol.DeleteRun{ID: args[0]})
	fmt.Printf("Deleted run %s.\n", args[0])
	return nil
}

func exitReplay(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.session.State().Replaying() {
		fmt.Println("Not in replay mode.")
		return nil
	}
	a.session.Dispatch(protocol.ExitReplay{})
	fmt.Println("Left replay mode. Working output cleared.")
	return nil
}

func reuseHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	state := a.session.State()
	if _, ok := state.FindRun(args[0]); !ok {
		return fmt.Errorf("run %s not found", args[0])
	}
	if reuseJudgment {
		a.session.Dispatch(protocol.ReuseJudgment{ID: args[0]})
		fmt.Printf("Loaded input and judgment anchor from run %s. Use 'resume copy' to continue.\n", args[0])
		return nil
	}
	a.session.Dispatch(protocol.ReuseInput{ID: args[0]})
	fmt.Printf("Loaded input from run %s. Use 'run' to start a new attempt.\n", args[0])
	return nil
}

func resetState(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.Dispatch(protocol.ResetProtocol{})
	fmt.Println("Working state reset. History and mode kept.")
	return nil
}
