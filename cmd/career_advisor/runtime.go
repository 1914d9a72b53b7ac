package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/analysis"
	"github.com/jonathan/career-advisor/internal/config"
	"github.com/jonathan/career-advisor/internal/llm"
	"github.com/jonathan/career-advisor/internal/logging"
)

// analyzerFactory builds the remote analyzer. Tests replace it with a stub.
var analyzerFactory = newAnalyzer

// newAnalyzer connects to the configured provider. The returned closer releases the client.
func newAnalyzer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (advisor.Analyzer, func(), error) {
	llmCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.LLM.APIKey == "" && !(llmCfg.Provider == llm.ProviderVertex && llmCfg.Project != "") {
		return nil, nil, fmt.Errorf("API key is required for provider %q (set GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or LLM_API_KEY)", llmCfg.Provider)
	}

	client, err := llm.NewClient(ctx, llmCfg, cfg.LLM.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closer := func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close LLM client")
		}
	}

	opts := []analysis.Option{analysis.WithLogger(logger), analysis.WithTimeout(cfg.LLM.Timeout)}
	if cfg.LLM.Temperature != nil {
		opts = append(opts, analysis.WithTemperature(*cfg.LLM.Temperature))
	}
	requester, err := analysis.NewRequester(client, opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}

	logger.WithFields(logrus.Fields{
		"provider": llmCfg.Provider,
		"model":    client.GetModel(llm.TierStandard),
	}).Debug("LLM client ready")
	return requester, closer, nil
}

// loadSettings reads the config file named by --config, if any, and the environment.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) (*logrus.Logger, error) {
	logger, err := logging.New(cfg.Logging, out)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return logger, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
