// cmd/job-portal/sweep.go
package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sweepstalescreenings "job-portal/internal/workers/application/sweep-stale-screenings"
)

// sweepCmd runs one sweep and exits, for cron style deployments. Requeued
// work items are picked up by the next poll of a running backend.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Recover stale screenings once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		in, err := a.loadIntegrations(ctx)
		if err != nil {
			return err
		}

		sweeper := sweepstalescreenings.NewSweeper(sweepstalescreenings.LoadConfig(a.cfg), a.applications, nil, a.newNotifier(in), a.log)
		out, err := sweeper.Execute(ctx)
		if err != nil {
			return err
		}

		a.zapLog.Info("Sweep finished",
			zap.Int("found", out.Found),
			zap.Int("requeued", out.Requeued),
			zap.Int("rejected", out.Rejected),
			zap.Int("failed", out.Failed),
		)
		return nil
	},
}
