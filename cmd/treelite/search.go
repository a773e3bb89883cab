package main

import (
	"errors"
	"fmt"

	"github.com/crflynn/treelite/core/formatter"
	"github.com/crflynn/treelite/domain/entry"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search --thresholds a,b,c value...",
	Short: "Look up and quantize values against sorted thresholds",
	Long: `Search sorted thresholds for each value.

For every value the output shows the index of the matching threshold (or
"not found") and the quantized code: 2*i on an exact match, 2*i+1 between
thresholds i and i+1, 2*len above every threshold and -10 below the first.

Examples:
  treelite search -t 1,2,3 2 2.5 0
  treelite search -t 0.5,1.5 -o json 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchThresholds []float64
	searchOutput     string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Float64SliceVarP(&searchThresholds, "thresholds", "t", nil, "strictly ascending thresholds")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "table", "formatter name")
	_ = searchCmd.MarkFlagRequired("thresholds")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}

	f, err := a.Formatter(searchOutput)
	if err != nil {
		return err
	}

	values, err := parseFloats(args)
	if err != nil {
		return err
	}

	ts := make([]float32, len(searchThresholds))
	for i, t := range searchThresholds {
		ts[i] = float32(t)
	}
	q, err := entry.NewQuantizer([][]float32{ts})
	if err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	records := make([]formatter.Record, 0, len(values))
	for _, v := range values {
		records = append(records, searchRecord(q, float32(v)))
	}

	opts := a.FormatOptions()
	opts.Columns = []string{"value", "index", "code"}
	return f.FormatRecords(cmd.OutOrStdout(), records, opts)
}

func searchRecord(q *entry.Quantizer, v float32) formatter.Record {
	rec := formatter.Record{
		"value": v,
		"code":  q.Quantize(0, v),
	}

	i, err := q.Index(0, v)
	switch {
	case err == nil:
		rec["index"] = i
	case errors.Is(err, entry.ErrUnknownThreshold):
		rec["index"] = "not found"
	default:
		rec["index"] = err.Error()
	}
	return rec
}
