package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openton/tonkit/internal/core/config"
	"github.com/openton/tonkit/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local sync status of the tracked account",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("Status requires a database", "config", cfgPath)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	var eventCount int64
	if err := db.GetContext(ctx, &eventCount, "SELECT COUNT(*) FROM events"); err != nil {
		slog.Error("Failed to query events", "error", err)
		os.Exit(1)
	}

	backfilled := false
	_ = db.GetContext(ctx, &backfilled,
		"SELECT completed FROM watermarks WHERE provider = 'tonapi'")

	var latest struct {
		ID         string `db:"id"`
		Lt         int64  `db:"lt"`
		Timestamp  int64  `db:"timestamp"`
		InProgress bool   `db:"in_progress"`
	}
	hasLatest := db.GetContext(ctx, &latest,
		"SELECT id, lt, timestamp, in_progress FROM events ORDER BY lt DESC LIMIT 1") == nil

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "EVENTS\tBACKFILLED\tLATEST LT\tLATEST AT\tPENDING")
	if hasLatest {
		_, _ = fmt.Fprintf(w, "%d\t%t\t%d\t%s\t%t\n",
			eventCount, backfilled, latest.Lt,
			time.Unix(latest.Timestamp, 0).UTC().Format(time.RFC3339),
			latest.InProgress)
	} else {
		_, _ = fmt.Fprintf(w, "%d\t%t\t-\t-\t-\n", eventCount, backfilled)
	}
	_ = w.Flush()
}
