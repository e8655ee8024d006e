package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/wire"
)

var (
	submitBranch     string
	submitCredential string
	submitLocalPath  string
	submitFile       bool
)

var submitCmd = &cobra.Command{
	Use:   "submit [remote]",
	Short: "Submit a new repository to the documentation pipeline",
	Long:  `Inserts a Pending repository row that the Worker Loop picks up on its next poll.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		remote := args[0]
		ctx := context.Background()

		application, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		repoType := core.RepoTypeGit
		if submitFile {
			repoType = core.RepoTypeFile
		}

		repo := &core.Repository{
			RemoteAddr: remote,
			Branch:     submitBranch,
			Credential: submitCredential,
			LocalPath:  submitLocalPath,
			Type:       repoType,
			Status:     core.StatusPending,
		}

		if err := application.Store.CreateRepository(ctx, repo); err != nil {
			return fmt.Errorf("failed to submit repository: %w", err)
		}

		slog.Info("repository submitted", "id", repo.ID, "remote", remote)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitBranch, "branch", "", "Branch to track (git repositories only)")
	submitCmd.Flags().StringVar(&submitCredential, "credential", "", "Clone credential (git repositories only)")
	submitCmd.Flags().StringVar(&submitLocalPath, "local-path", "", "Local path (file repositories only)")
	submitCmd.Flags().BoolVar(&submitFile, "file", false, "Submit a local, non-git repository instead of a clone URL")
	rootCmd.AddCommand(submitCmd)
}
