package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"intentbot/internal/clix"
	"intentbot/internal/models"
)

// jobsCmd lists background classification jobs, or shows one job's result.
var jobsCmd = &cobra.Command{
	Use:         "jobs [job-id]",
	Short:       "List background classification jobs",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationSkipClassifier: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		if appInstance.JobStore == nil {
			return fmt.Errorf("job tracking is disabled: set database.dsn")
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job ID %q: %w", args[0], err)
			}
			job, err := appInstance.JobStore.GetJob(ctx, id)
			if err != nil {
				return fmt.Errorf("error loading job %s: %w", id, err)
			}
			fmt.Fprintf(out, "Job:     %s\nType:    %s\nQueue:   %s\nStatus:  %s\nCreated: %s\nUpdated: %s\n",
				job.JobID, job.TaskType, job.Queue, job.Status,
				job.CreatedAt.Local().Format("2006-01-02 15:04:05"), job.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			if job.Error != nil {
				fmt.Fprintf(out, "Error:   %s\n", *job.Error)
			}
			if len(job.Result) > 0 {
				fmt.Fprintf(out, "Result:  %s\n", job.Result)
			}
			return nil
		}

		page, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return err
		}
		jobs, err := appInstance.JobStore.ListJobs(ctx, page.Limit, page.Offset)
		if err != nil {
			return fmt.Errorf("error listing jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Fprintln(out, "No jobs found.")
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Job ID", "Type", "Queue", "Status", "Updated At"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, j := range jobs {
			table.Append([]string{j.JobID.String(), j.TaskType, j.Queue, statusLabel(j.Status), j.UpdatedAt.Local().Format("2006-01-02 15:04:05")})
		}
		table.Render()
		return nil
	},
}

func statusLabel(status string) string {
	switch status {
	case models.JobStatusFailed:
		return "FAILED"
	case models.JobStatusCompleted:
		return "done"
	default:
		return status
	}
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	clix.AddPaginationFlags(jobsCmd.Flags())
}
