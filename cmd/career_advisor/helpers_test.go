package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/config"
	"github.com/jonathan/career-advisor/internal/types"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	err    error
	titles []string
}

func (s *stubAnalyzer) RequestAnalysis(_ context.Context, jobTitle string) (*types.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, jobTitle)
	if s.err != nil {
		return nil, s.err
	}
	return sampleResult(jobTitle), nil
}

func sampleResult(title string) *types.AnalysisResult {
	return &types.AnalysisResult{
		JobTitle:              title,
		AIImpact:              "Code review is assisted by models.",
		SkillHistory:          "From punch cards to cloud platforms.",
		CurrentAIDevelopments: "Coding agents.",
		RecommendedCourses: []types.Course{
			{Name: "ML Basics", Platform: "Coursera", URL: "https://c.example/ml", IsFree: true},
		},
		RelevantAPIs: []types.APIResource{
			{Name: "Text API", Description: "Generate text.", URL: "https://t.example"},
		},
		OnlineCommunities: []types.Community{
			{Name: "r/programming", Platform: "Reddit", URL: "https://r.example/p"},
		},
	}
}

// useStubAnalyzer swaps the analyzer factory for the duration of the test.
func useStubAnalyzer(t *testing.T, stub *stubAnalyzer) {
	t.Helper()
	orig := analyzerFactory
	analyzerFactory = func(context.Context, *config.Config, *logrus.Logger) (advisor.Analyzer, func(), error) {
		return stub, func() {}, nil
	}
	t.Cleanup(func() { analyzerFactory = orig })
}

// executeCommand runs the root command in-process and returns its stdout and stderr.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if stdin == nil {
		stdin = &bytes.Buffer{}
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// getBinaryPath returns the path to the career_advisor binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "career_advisor"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/career_advisor ./cmd/career_advisor'", binaryPath)
	}

	return binaryPath
}
