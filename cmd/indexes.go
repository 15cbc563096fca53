package cmd

import (
	"context"
	"fmt"
	"time"

	"practice-service/internal/config"
	mongodb "practice-service/internal/database/mongo"
	"practice-service/internal/repository"

	"github.com/spf13/cobra"
)

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		client, db, err := mongodb.Connect(ctx, mongodb.DefaultConfig(cfg.MongoURI, cfg.MongoDatabase))
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer mongodb.Disconnect(client)

		if err := repository.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
		return nil
	},
}
