package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Jgaps7/curriculos-saas/internal/app"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
	"github.com/Jgaps7/curriculos-saas/internal/services"
)

const reindexPage = 200

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the similarity index for a tenant's analysed résumés",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tenantID := viper.GetString("reindex.tenant")
		if tenantID == "" {
			return errors.New("--tenant is required")
		}

		cfg, log := setup()
		ctx := cmd.Context()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Index == nil {
			return errors.New("QDRANT_URL is not set")
		}

		indexed, failed, err := reindex(ctx, a.Resumes, a.Index, tenantID, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d résumés, %d failed\n", indexed, failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().String("tenant", "", "tenant id to reindex")
	_ = viper.BindPFlag("reindex.tenant", reindexCmd.Flags().Lookup("tenant"))
}

func reindex(
	ctx context.Context,
	resumes repositories.ResumeRepository,
	index services.ResumeIndex,
	tenantID string,
	log *logrus.Logger,
) (indexed, failed int, err error) {
	log.WithField("tenant_id", tenantID).Info("🚀 Starting reindex...")

	for offset := 0; ; offset += reindexPage {
		page, err := resumes.List(ctx, tenantID, repositories.ListFilter{
			Status: string(models.StatusDone),
			Limit:  reindexPage,
			Offset: offset,
		})
		if err != nil {
			return indexed, failed, err
		}

		for i := range page {
			if err := index.IndexResume(ctx, &page[i]); err != nil {
				log.WithError(err).WithField("resume_id", page[i].ID).Error("❌ Failed to index resume")
				failed++
				continue
			}
			indexed++
		}

		if len(page) < reindexPage {
			break
		}
	}

	log.WithFields(logrus.Fields{"indexed": indexed, "failed": failed}).Info("✅ Reindex completed")
	return indexed, failed, nil
}
