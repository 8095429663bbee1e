package cmd

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"intentbot/internal/clix"
	"intentbot/internal/models"
)

var (
	historyMessage string
	historyStats   bool
)

// historyCmd lists recorded sentence classifications.
var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "View classification history",
	Long:        `Displays recorded sentence classifications, newest first. Requires database.dsn.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipClassifier: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		if appInstance.HistoryStore == nil {
			return fmt.Errorf("classification history is disabled: set database.dsn")
		}
		out := cmd.OutOrStdout()

		if historyStats {
			counts, err := appInstance.HistoryStore.CountByCategory(ctx)
			if err != nil {
				return fmt.Errorf("error counting categories: %w", err)
			}
			if len(counts) == 0 {
				fmt.Fprintln(out, "No classification history found.")
				return nil
			}
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Category", "Sentences"})
			table.SetBorder(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, c := range counts {
				table.Append([]string{c.Category, strconv.FormatInt(c.Count, 10)})
			}
			table.Render()
			return nil
		}

		var records []*models.ClassificationRecord
		if historyMessage != "" {
			id, err := uuid.Parse(historyMessage)
			if err != nil {
				return fmt.Errorf("invalid message ID %q: %w", historyMessage, err)
			}
			records, err = appInstance.HistoryStore.ListMessageClassifications(ctx, id)
			if err != nil {
				return fmt.Errorf("error loading message history: %w", err)
			}
		} else {
			page, err := clix.ParsePagination(cmd.Flags())
			if err != nil {
				return err
			}
			records, err = appInstance.HistoryStore.ListClassifications(ctx, page.Limit, page.Offset)
			if err != nil {
				return fmt.Errorf("error listing classification history: %w", err)
			}
		}

		if len(records) == 0 {
			fmt.Fprintln(out, "No classification history found.")
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Message", "#", "Sentence", "Category", "Score", "Recorded At"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, r := range records {
			category := "-"
			if r.Category != nil {
				category = *r.Category
			} else if r.Error != nil {
				category = "error: " + *r.Error
			}
			table.Append([]string{
				r.MessageID.String()[:8],
				strconv.Itoa(r.SentenceIndex),
				r.Sentence,
				category,
				strconv.FormatFloat(r.Score, 'f', 3, 64),
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	clix.AddPaginationFlags(historyCmd.Flags())
	historyCmd.Flags().StringVarP(&historyMessage, "message", "m", "", "Show the sentences of one message ID")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "Show sentence counts per category")
}
