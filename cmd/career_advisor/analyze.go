package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/analysis"
	"github.com/jonathan/career-advisor/internal/sharelink"
	"github.com/jonathan/career-advisor/internal/tui"
	"github.com/jonathan/career-advisor/internal/types"
)

var (
	analyzeJSON        bool
	analyzeShareBase   string
	analyzeInteractive bool
	analyzeLink        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [job title]",
	Short: "Analyze how AI affects a job or field",
	Long: "Ask the configured model how AI is changing a job or field and print the analysis.\n" +
		"With --interactive, open a terminal app to run several analyses in a row.",
	Example: `  career_advisor analyze "Graphic Designer"
  career_advisor analyze Nurse --json --share-base https://advisor.example.com/
  career_advisor analyze --interactive --link "https://advisor.example.com/?analysis=..."`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result and its share link as JSON")
	analyzeCmd.Flags().StringVar(&analyzeShareBase, "share-base", "", "Base URL for share links (defaults to server.public_base_url)")
	analyzeCmd.Flags().BoolVarP(&analyzeInteractive, "interactive", "i", false, "Open the interactive terminal app")
	analyzeCmd.Flags().StringVar(&analyzeLink, "link", "", "Share link or token to open in the interactive app")
	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the --json shape.
type analyzeOutput struct {
	Result     *types.AnalysisResult `json:"result"`
	ShareURL   string                `json:"shareUrl,omitempty"`
	ShareToken string                `json:"shareToken"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rawTitle := strings.Join(args, " ")
	if analyzeLink != "" && !analyzeInteractive {
		return fmt.Errorf("--link requires --interactive")
	}
	// Reject a blank title before touching config or credentials.
	if !analyzeInteractive {
		if _, err := analysis.NormalizeTitle(rawTitle); err != nil {
			return errors.New(advisor.Message(err))
		}
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	shareBase := analyzeShareBase
	if shareBase == "" {
		shareBase = cfg.Server.PublicBaseURL
	}

	analyzer, closeAnalyzer, err := analyzerFactory(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	coordinator := advisor.NewCoordinator(analyzer, nil)

	if analyzeInteractive {
		_, err := tui.Run(cmd.Context(), tui.AppConfig{
			Coordinator: coordinator,
			ShareBase:   shareBase,
			ShareToken:  sharelink.TokenFromURL(analyzeLink),
			Output:      cmd.OutOrStdout(),
			Input:       cmd.InOrStdin(),
		})
		return err
	}

	run := func(ctx context.Context) advisor.State {
		return coordinator.Analyze(ctx, advisor.State{}, rawTitle)
	}
	var state advisor.State
	if !analyzeJSON && isTerminal(cmd.ErrOrStderr()) {
		title, _ := analysis.NormalizeTitle(rawTitle)
		state, err = tui.RunLoader(cmd.Context(), cmd.ErrOrStderr(), title, run)
		if err != nil {
			return err
		}
	} else {
		state = run(cmd.Context())
	}

	if state.Err != nil {
		return fmt.Errorf("%s: %w", state.ErrorMessage(), state.Err)
	}

	token, err := coordinator.Codec().Encode(state.Result)
	if err != nil {
		return fmt.Errorf("failed to encode share link: %w", err)
	}
	var shareURL string
	if shareBase != "" {
		if shareURL, err = coordinator.ShareURL(shareBase, state); err != nil {
			return fmt.Errorf("failed to build share link: %w", err)
		}
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeOutput{Result: state.Result, ShareURL: shareURL, ShareToken: token})
	}

	tui.NewPrinter(cmd.OutOrStdout()).PrintResult(state.Result, shareURL)
	if shareURL == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nShare token: %s\n", token)
	}
	return nil
}
