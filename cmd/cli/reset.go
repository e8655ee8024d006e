package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/wire"
)

var resetCmd = &cobra.Command{
	Use:   "reset [id]",
	Short: "Reset a Failed repository back to Pending so the Worker Loop retries it",
	Long:  `Admin-only recovery path: clears owner/lease_deadline and sets status back to pending, regardless of the row's current owner.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id := args[0]
		ctx := context.Background()

		application, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		repo, err := application.Store.GetRepository(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to look up repository %s: %w", id, err)
		}

		fields := map[string]any{
			"status":         string(core.StatusPending),
			"owner":          "",
			"lease_deadline": nil,
		}
		if err := application.Store.UpdateRepositoryFields(ctx, id, fields); err != nil {
			return fmt.Errorf("failed to reset repository %s: %w", id, err)
		}

		slog.Info("repository reset to pending", "id", id, "remote", repo.RemoteAddr, "previous_status", repo.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
