package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/paygate/internal/service"
)

func settleCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Run due settlement tasks once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := service.NewSettlementService(store, service.WithLogger(logger))
			runner.BatchSize = batch

			summary, err := runner.RunDue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(summary)
		},
	}

	cmd.Flags().IntVarP(&batch, "batch", "n", service.DefaultBatchSize, "maximum tasks to settle")
	return cmd
}
