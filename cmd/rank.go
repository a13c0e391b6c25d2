package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shopsmart/shopsmart-cli/internal/model"
	"github.com/shopsmart/shopsmart-cli/internal/rank"
)

var (
	rankBrand     string
	rankMaxPrice  float64
	rankMinRating float64
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a product list read from stdin",
	Long:  "Reads a JSON array of product records on stdin, scores each against the given constraints and prints the ordered list. Products are never filtered out, only reordered.",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return eris.Wrap(err, "read stdin")
		}

		var products []model.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return eris.Wrap(err, "parse product list")
		}

		plan := model.SearchPlan{Brand: rankBrand}
		if cmd.Flags().Changed("max-price") {
			plan.MaxPrice = model.Float(rankMaxPrice)
		}
		if cmd.Flags().Changed("min-rating") {
			plan.MinRating = model.Float(rankMinRating)
		}

		ranked := rank.Rank(products, plan)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	},
}

func init() {
	rankCmd.Flags().StringVar(&rankBrand, "brand", "", "preferred brand (substring match on title)")
	rankCmd.Flags().Float64Var(&rankMaxPrice, "max-price", 0, "budget ceiling")
	rankCmd.Flags().Float64Var(&rankMinRating, "min-rating", 0, "minimum acceptable rating")
	rootCmd.AddCommand(rankCmd)
}
