package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	commentservices "github.com/qolzam/forum/comments/services"
	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/pkg/log"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/internal/platform/storage"
	postservices "github.com/qolzam/forum/posts/services"
	"github.com/qolzam/forum/votes/ranking"
	"github.com/qolzam/forum/votes/services"
	"github.com/qolzam/forum/votes/targets"
	"github.com/spf13/cobra"
)

func newReconcileCommand(root *rootOptions) *cobra.Command {
	var (
		batchSize int
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild vote counters, scores and reputation from the vote ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := platformconfig.LoadFromEnv()
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = cfg.Reconcile.BatchSize
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			store, err := storage.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			report, err := reconcile(ctx, store, ranking.FromConfig(cfg.Ranking), batchSize)
			if err != nil {
				return err
			}
			return printReport(cmd, root, report)
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Targets and users read per page (default from RECONCILE_BATCH_SIZE)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Abort the pass after this long")
	return cmd
}

func reconcile(ctx context.Context, store *storage.Backend, ranker ranking.Ranker, batchSize int) (*services.ReconcileReport, error) {
	registry := targets.NewRegistry(
		postservices.NewVoteTarget(store.Posts, ranker),
		commentservices.NewVoteTarget(store.Comments, ranker),
	)
	// A one-shot run has nobody scraping the default registry.
	metrics := observability.NewMetricsCollector(prometheus.NewRegistry())
	reconciler := services.NewReconciler(store.Votes, store.Users, registry, store.Tx, metrics,
		services.ReconcilerConfig{BatchSize: batchSize})
	return reconciler.ReconcileAll(ctx)
}

type storeCloser interface {
	Close(ctx context.Context) error
}

func closeStore(store storeCloser) {
	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		log.Error("failed to close database: %v", err)
	}
}

func printReport(cmd *cobra.Command, root *rootOptions, report *services.ReconcileReport) error {
	out := cmd.OutOrStdout()
	if root.output == OutputJSON {
		return printJSON(out, report)
	}
	fmt.Fprintf(out, "targets scanned:   %d\n", report.TargetsScanned)
	fmt.Fprintf(out, "targets repaired:  %d\n", report.TargetsRepaired)
	fmt.Fprintf(out, "scores refreshed:  %d\n", report.ScoresRefreshed)
	fmt.Fprintf(out, "users scanned:     %d\n", report.UsersScanned)
	fmt.Fprintf(out, "users repaired:    %d\n", report.UsersRepaired)
	fmt.Fprintf(out, "took:              %s\n", report.Duration)
	return nil
}
