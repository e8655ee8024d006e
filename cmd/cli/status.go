package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/reposcribe/internal/wire"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the status of all repositories managed by the documentation pipeline",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		application, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		repos, err := application.Store.GetAllRepositories(ctx)
		if err != nil {
			return fmt.Errorf("failed to retrieve repositories: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(repos)
		}

		if len(repos) == 0 {
			slog.Info("no repositories are currently tracked")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "REPOSITORY\tSTATUS\tCLASSIFY\tLAST ERROR\tUPDATED")
		for _, repo := range repos {
			name := repo.Name
			if name == "" {
				name = repo.RemoteAddr
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				name,
				repo.Status,
				repo.Classify,
				repo.LastError,
				repo.UpdatedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output status as JSON")
	rootCmd.AddCommand(statusCmd)
}
