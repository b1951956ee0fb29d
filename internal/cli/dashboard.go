package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/service"
)

func newDashboardCommand(a *app) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show case statistics and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.authed(ctx); err != nil {
				return err
			}
			if !watch {
				d, err := a.client.Cases.Dashboard(ctx)
				if err != nil {
					return err
				}
				return a.print(d)
			}
			return a.watchDashboard(ctx, interval)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "refresh until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "refresh interval with --watch")
	return cmd
}

// watchDashboard reloads on every tick. A slow response that lands after a
// newer reload started is discarded instead of overwriting fresher data.
func (a *app) watchDashboard(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	var view service.View
	defer view.Close()

	reload := func() {
		ticket := view.Begin()
		go func() {
			d, err := a.client.Cases.Dashboard(ctx)
			view.Commit(ticket, func() { a.renderDashboard(d, err) })
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	reload()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			reload()
		}
	}
}

func (a *app) renderDashboard(d *domain.DashboardData, err error) {
	a.printf("--- %s ---\n", time.Now().Format(time.Kitchen))
	if err != nil {
		fmt.Fprintln(a.opts.Stderr, "Error:", describe(err))
		return
	}
	if err := a.print(d); err != nil {
		a.log.Error().Err(err).Msg("render dashboard")
	}
}
