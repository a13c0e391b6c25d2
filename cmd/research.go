package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var researchCmd = &cobra.Command{
	Use:   "research [request...]",
	Short: "Run a shopping research session for a free-text request",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		request := strings.Join(args, " ")

		env, err := initPipeline()
		if err != nil {
			return err
		}

		result, err := env.Pipeline.Run(ctx, request)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("research complete",
			zap.String("run_id", result.RunID),
			zap.Int("urls", len(result.URLs)),
			zap.Int("products", len(result.Products)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
}
