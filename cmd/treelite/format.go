package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format [values...]",
	Short: "Format float values",
	Long: `Format a sequence of float values with a registered formatter.

Values are read from the arguments, or from stdin (separated by whitespace
or commas) when no argument is given. The array formatter wraps its output
at the configured width and prints non-finite values as inf, -inf and nan.

Examples:
  treelite format 0.5 1 2.25
  treelite format --name thresholds --width 40 < values.txt
  treelite format -o json 1 2 3`,
	RunE: runFormat,
}

var (
	formatOutput string
	formatName   string
	formatWidth  int
)

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&formatOutput, "output", "o", "", "formatter name (default from config)")
	formatCmd.Flags().StringVarP(&formatName, "name", "n", "", "array variable name (default from config)")
	formatCmd.Flags().IntVarP(&formatWidth, "width", "w", 0, "wrap width (default from config)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}

	f, err := a.Formatter(formatOutput)
	if err != nil {
		return err
	}

	tokens := args
	if len(tokens) == 0 {
		tokens, err = readTokens(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	values, err := parseFloats(tokens)
	if err != nil {
		return err
	}

	name := formatName
	if name == "" {
		name = cfg.Format.Name
	}
	opts := a.FormatOptions()
	if formatWidth > 0 {
		opts.TextWidth = formatWidth
	}

	return f.FormatValues(cmd.OutOrStdout(), name, values, opts)
}

// readTokens splits r on whitespace and commas.
func readTokens(r io.Reader) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		for _, tok := range strings.Split(sc.Text(), ",") {
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens, sc.Err()
}

// parseFloats parses every token, accepting inf, -inf and nan.
func parseFloats(tokens []string) ([]float64, error) {
	values := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(strings.TrimSuffix(tok, ","))
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", tok, err)
		}
		values = append(values, v)
	}
	return values, nil
}
