package main

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"plantafel/internal/board"
	"plantafel/internal/conflict"
	appLog "plantafel/internal/log"
	"plantafel/internal/metrics"
	"plantafel/internal/model"
)

func newWatchCmd(root *rootFlags) *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-detect conflicts on the refresh schedule and write metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, root)
			if err != nil {
				return err
			}
			v, err := a.view(view)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rec := metrics.NewRecorder()

			refresh := func() {
				if err := a.refresh(ctx, v, rec, time.Now()); err != nil {
					rec.RefreshFailed()
					appLog.Error("refresh failed", err)
				}
				if err := rec.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
					appLog.Error("metrics write failed", err, "path", a.cfg.MetricsTextfile)
				}
			}

			c := cron.New(cron.WithLocation(a.board.Location()))
			if _, err := c.AddFunc(a.cfg.RefreshCron, refresh); err != nil {
				return errors.Wrapf(err, "refresh schedule %q", a.cfg.RefreshCron)
			}

			appLog.Info("watch started", "schedule", a.cfg.RefreshCron, "view", v)
			refresh()
			c.Start()

			<-ctx.Done()
			appLog.Info("signal received, shutting down")
			<-c.Stop().Done()
			appLog.Info("watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "Grouping recorded in metrics (default from config)")
	return cmd
}

// refresh loads the configured window, logs every conflict and records the
// gauges.
func (a *app) refresh(ctx context.Context, v model.View, rec *metrics.Recorder, now time.Time) error {
	start, end, err := a.window("", 0, now)
	if err != nil {
		return err
	}
	out, err := a.board.Load(ctx, board.Query{View: v, From: start, To: end})
	if err != nil {
		return err
	}

	for _, c := range out.Conflicts {
		appLog.Warn("conflict",
			"id", c.ID,
			"type", c.Type,
			"severity", c.Severity,
			"employee", c.EmployeeID,
			"a", c.A.EventID,
			"b", c.B.EventID,
			"from", c.OverlapStart,
			"to", c.OverlapEnd,
		)
	}
	appLog.Info("board refreshed", metrics.LogFields(conflict.Summarize(out.Conflicts))...)
	rec.Observe(out, now)
	return nil
}
