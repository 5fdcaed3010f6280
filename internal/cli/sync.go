package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"board-sync/internal/features/settings"
	"board-sync/internal/features/sheets"
	"board-sync/internal/features/sync"

	"github.com/spf13/cobra"
)

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the board collections with the current spreadsheet contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			service, err := newSyncService(e)
			if err != nil {
				return err
			}

			result, syncErr := service.Sync(ctx, "cli")
			if result != nil {
				if err := rootOpts.print(cmd.OutOrStdout(), result, func(w io.Writer) { printResult(w, result) }); err != nil {
					return err
				}
			}
			return syncErr
		},
	}
}

func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer e.Close(ctx)

			runs, err := sync.NewSyncRunRepository(e.db, e.cfg).List(ctx, limit)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), runs, func(w io.Writer) {
				for _, r := range runs {
					fmt.Fprintf(w, "%s  %-8s %-7s %v %s\n",
						r.StartTime.Format("2006-01-02 15:04:05"), r.Trigger, r.Status, r.Counts, r.Error)
				}
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 10, "number of runs to show")
	return cmd
}

func newSyncService(e *env) (sync.SyncService, error) {
	opts, err := sync.BuildOptions(e.cfg)
	if err != nil {
		return nil, err
	}
	reader, err := sheets.NewReader(context.Background(), e.cfg.Sheets)
	if err != nil {
		return nil, err
	}

	return sync.NewSyncService(
		opts,
		reader,
		sync.NewReplacer(sync.NewMongoStore(e.db), e.cfg.Sync.BatchSize, e.log),
		settings.NewSettingsService(settings.NewSettingsRepository(e.db, e.cfg)),
		sync.NewSyncRunRepository(e.db, e.cfg),
		sync.NewMongoLease(e.db, e.cfg.Sync.LeaseCollection, e.cfg.Sync.LeaseTTL),
		e.log,
	), nil
}

func printResult(w io.Writer, result *sync.SyncResult) {
	fmt.Fprintf(w, "status: %s\n", result.Status)

	names := make([]string, 0, len(result.Counts))
	for name := range result.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %d\n", name, result.Counts[name])
	}
	if result.Message != "" {
		fmt.Fprintf(w, "message: %s\n", result.Message)
	}
}
