package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:       "translate [judgment|copy]",
	Short:     "Render the current judgment or copy into Simplified Chinese",
	Long:      `Sends the current working content back through the service for translation, keeping its structure. Requires live mode.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"judgment", "copy"},
	RunE:      translateContent,
}

func translateContent(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.generator == nil {
		return fmt.Errorf("translation needs the live service; disable mock mode")
	}

	state := a.session.State()
	ctx, cancel := signalContext()
	defer cancel()

	switch args[0] {
	case "judgment":
		confirmed := state.Output.Judgment.Confirmed
		if confirmed == nil {
			return fmt.Errorf("no confirmed judgment to translate")
		}
		translated, err := a.generator.TranslateJudgment(ctx, *confirmed)
		if err != nil {
			return err
		}
		fmt.Printf("Observed claim:  %s\n", translated.ObservedClaim)
		fmt.Printf("Mechanism:       %s\n", translated.OperationalMechanism)
		fmt.Printf("Failure point:   %s\n", translated.FailurePoint)
		fmt.Printf("Anchor:          %s\n", translated.JudgmentLock)
		return nil

	case "copy":
		if state.Output.Copy.NarrativeSpine == "" {
			return fmt.Errorf("no copy output to translate")
		}
		translated, err := a.generator.TranslateCopy(ctx, state.Output.Copy)
		if err != nil {
			return err
		}
		fmt.Println(translated.NarrativeSpine)
		for _, line := range translated.KeyLines {
			fmt.Printf("  * %s\n", line)
		}
		return nil

	default:
		return fmt.Errorf("unknown target %q (want judgment or copy)", args[0])
	}
}
