package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopsmart/shopsmart-cli/internal/model"
)

var extractCmd = &cobra.Command{
	Use:   "extract [url...]",
	Short: "Extract product records from marketplace URLs",
	Long:  "Fetches each URL and runs the extraction chain directly, bypassing planning and ranking. Useful for debugging selectors against live pages.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline()
		if err != nil {
			return err
		}

		products := make([]model.Product, 0, len(args))
		for _, rawURL := range args {
			product, err := env.Router.Route(ctx, rawURL)
			if err != nil {
				zap.L().Warn("extraction failed",
					zap.String("url", rawURL),
					zap.Error(err),
				)
				continue
			}
			products = append(products, *product)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
