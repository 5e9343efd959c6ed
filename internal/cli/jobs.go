package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [document-id]",
	Short: "Chunk, embed and index a stored document",
	Long:  `Runs ingestion for one document synchronously. The document must already exist in the database.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Brand style profile commands",
}

var profileRebuildCmd = &cobra.Command{
	Use:   "rebuild [brand-id]",
	Short: "Rebuild the style profile and memory facts from processed sources",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileRebuild,
}

func init() {
	profileCmd.AddCommand(profileRebuildCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(profileCmd)
}

func newJob(jobType jobModel.JobType, payload jobModel.JobPayload) jobModel.Job {
	return jobModel.Job{
		Id:          uuid.NewString(),
		JobType:     jobType,
		JobPayload:  payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusRunning,
	}
}

func jobFailure(job jobModel.Job) error {
	if job.Status != jobModel.JobStatusError {
		return nil
	}
	msg := fmt.Sprintf("%s failed at %s: %s", job.JobType, job.CurrentStep, job.Error.Message)
	if job.Error.Retry {
		msg += " (retryable)"
	}
	return errors.New(msg)
}

func runIngest(cmd *cobra.Command, args []string) error {
	job := services.Rag.IngestDocument(cmd.Context(), newJob(jobModel.JobTypeIngest, jobModel.JobPayload{DocumentId: args[0]}))
	if err := jobFailure(job); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "document %s processed: %d chunks\n", args[0], job.JobPayload.ChunkCount)
	return nil
}

func runProfileRebuild(cmd *cobra.Command, args []string) error {
	job := services.Rag.RebuildProfile(cmd.Context(), newJob(jobModel.JobTypeRebuildProfile, jobModel.JobPayload{BrandId: args[0]}))
	if err := jobFailure(job); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "brand %s profile rebuilt from %d sources, %d memory facts\n",
		args[0], job.JobPayload.SourceCount, job.JobPayload.FactCount)
	return nil
}
