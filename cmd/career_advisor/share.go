package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-advisor/internal/advisor"
	"github.com/jonathan/career-advisor/internal/sharelink"
	"github.com/jonathan/career-advisor/internal/tui"
	"github.com/jonathan/career-advisor/internal/types"
)

// maxResultFileBytes bounds the JSON read by share encode.
const maxResultFileBytes = 1 << 20

var (
	shareBase   string
	sharePretty bool
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Create and read share links",
}

var shareEncodeCmd = &cobra.Command{
	Use:   "encode [file|-]",
	Short: "Encode an analysis JSON file into a share token or link",
	Long:  "Validate an analysis result (JSON, from a file or stdin) and print its share token, or its full link when --base is set.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShareEncode,
}

var shareDecodeCmd = &cobra.Command{
	Use:   "decode <token|url>",
	Short: "Decode a share token or link into the analysis it carries",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareDecode,
}

func init() {
	shareEncodeCmd.Flags().StringVar(&shareBase, "base", "", "Base URL; print a full share link instead of the bare token")
	shareDecodeCmd.Flags().BoolVar(&sharePretty, "pretty", false, "Render the analysis instead of printing JSON")

	shareCmd.AddCommand(shareEncodeCmd, shareDecodeCmd)
	rootCmd.AddCommand(shareCmd)
}

func runShareEncode(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		in = f
	}

	data, err := io.ReadAll(io.LimitReader(in, maxResultFileBytes))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	var result types.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to parse analysis JSON: %w", err)
	}
	if err := result.Validate(); err != nil {
		return err
	}

	codec := sharelink.NewCodec()
	var out string
	if shareBase != "" {
		out, err = codec.ShareURL(shareBase, &result)
	} else {
		out, err = codec.Encode(&result)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runShareDecode(cmd *cobra.Command, args []string) error {
	result, err := sharelink.Decode(sharelink.TokenFromURL(args[0]))
	if err != nil {
		var linkErr *sharelink.InvalidShareLinkError
		if errors.As(err, &linkErr) {
			return fmt.Errorf("%s (%s)", advisor.MessageInvalidShareLink, linkErr.Reason)
		}
		return err
	}

	if sharePretty {
		tui.NewPrinter(cmd.OutOrStdout()).PrintResult(result, "")
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
