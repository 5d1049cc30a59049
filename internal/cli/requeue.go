package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Jgaps7/curriculos-saas/internal/app"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
	"github.com/Jgaps7/curriculos-saas/internal/services"
)

var requeueCmd = &cobra.Command{
	Use:   "requeue",
	Short: "Re-enqueue résumés stuck in queued or parsed, and optionally failed ones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log := setup()
		ctx := cmd.Context()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := requeue(ctx, a.Resumes, a.Coordinator, requeueOptions{
			OlderThan: viper.GetDuration("requeue.older-than"),
			Limit:     viper.GetInt("requeue.limit"),
			Failed:    viper.GetBool("requeue.failed"),
		}, log)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "requeued %d stale, retried %d failed, %d errors\n", res.Requeued, res.Retried, res.Errors)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(requeueCmd)

	requeueCmd.Flags().Duration("older-than", 15*time.Minute, "only résumés not updated for this long")
	requeueCmd.Flags().Int("limit", 50, "maximum résumés per status group")
	requeueCmd.Flags().Bool("failed", false, "also reset failed résumés and enqueue them again")

	_ = viper.BindPFlag("requeue.older-than", requeueCmd.Flags().Lookup("older-than"))
	_ = viper.BindPFlag("requeue.limit", requeueCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("requeue.failed", requeueCmd.Flags().Lookup("failed"))
}

type requeueOptions struct {
	OlderThan time.Duration
	Limit     int
	Failed    bool
	now       func() time.Time
}

type requeueResult struct {
	Requeued int
	Retried  int
	Errors   int
}

func requeue(
	ctx context.Context,
	resumes repositories.ResumeRepository,
	coordinator services.Coordinator,
	opts requeueOptions,
	log *logrus.Logger,
) (requeueResult, error) {
	var res requeueResult

	now := time.Now
	if opts.now != nil {
		now = opts.now
	}
	cutoff := now().Add(-opts.OlderThan)

	stale, err := resumes.FindStale(ctx, []models.ResumeStatus{models.StatusQueued, models.StatusParsed}, cutoff, opts.Limit)
	if err != nil {
		return res, err
	}
	for i := range stale {
		if err := coordinator.Requeue(ctx, &stale[i]); err != nil {
			log.WithError(err).WithField("resume_id", stale[i].ID).Warn("⚠️  Failed to requeue resume")
			res.Errors++
			continue
		}
		res.Requeued++
	}

	if !opts.Failed {
		return res, nil
	}

	failed, err := resumes.FindStale(ctx, []models.ResumeStatus{models.StatusFailed}, cutoff, opts.Limit)
	if err != nil {
		return res, err
	}
	for _, r := range failed {
		if _, err := coordinator.Retry(ctx, r.TenantID, r.ID); err != nil {
			log.WithError(err).WithField("resume_id", r.ID).Warn("⚠️  Failed to retry resume")
			res.Errors++
			continue
		}
		res.Retried++
	}
	return res, nil
}
