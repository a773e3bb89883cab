package main

import (
	"github.com/crflynn/treelite/core/capability"
	"github.com/crflynn/treelite/core/formatter"
	"github.com/spf13/cobra"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List registered variants",
	Long: `List the concrete variants registered with the clone capability.

Examples:
  treelite variants
  treelite variants -o yaml`,
	Args: cobra.NoArgs,
	RunE: runVariants,
}

var variantsOutput string

func init() {
	rootCmd.AddCommand(variantsCmd)

	variantsCmd.Flags().StringVarP(&variantsOutput, "output", "o", "table", "formatter name")
}

func runVariants(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}

	f, err := a.Formatter(variantsOutput)
	if err != nil {
		return err
	}

	var records []formatter.Record
	for _, v := range a.Variants.List() {
		records = append(records, formatter.Record{
			"name":        v.Name,
			"kind":        capability.TypeName(v.New()),
			"description": v.Description,
		})
	}

	opts := a.FormatOptions()
	opts.Columns = []string{"name", "kind", "description"}
	return f.FormatRecords(cmd.OutOrStdout(), records, opts)
}
