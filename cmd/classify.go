package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	classifyJSON  bool
	classifyAsync bool
)

// classifyCmd runs one message through the pipeline and shows every stage.
var classifyCmd = &cobra.Command{
	Use:   "classify <text | file | ->",
	Short: "Classify the sentences of a message",
	Long: `Splits the message into sentences and prints, per sentence, its lemmas,
category and score, followed by the composed reply. The argument is read as a
file when it names one, from stdin when it is "-", and as the message text
otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		res, err := appInstance.InputProcessor.Process(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if classifyAsync {
			if appInstance.JobClient == nil {
				return fmt.Errorf("--async needs redis.address to be configured")
			}
			messageID := uuid.New()
			jobID, err := appInstance.JobClient.EnqueueClassifyJob(ctx, messageID, res.Body)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Queued message %s as job %s\n", messageID, jobID)
			return nil
		}

		result, err := appInstance.Responder.ClassifyMessage(ctx, res.Body)
		if err != nil {
			return err
		}
		reply := appInstance.Responder.Resolver().Compose(result.Classified())

		if classifyJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Sentences any    `json:"sentences"`
				Reply     string `json:"reply"`
				Complete  bool   `json:"complete"`
			}{result.Sentences, reply.Text, reply.Complete})
		}

		if len(result.Sentences) == 0 {
			fmt.Fprintln(out, "No sentences found.")
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"#", "Sentence", "Lemmas", "Category", "Score"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, s := range result.Sentences {
			category := s.Category
			score := strconv.FormatFloat(s.Score, 'f', 3, 64)
			if s.Err != nil {
				category = color.RedString("failed at %s: %v", s.Stage, s.Err)
				score = "-"
			}
			table.Append([]string{strconv.Itoa(s.Index), s.Text, strings.Join(s.Lemmas, " "), category, score})
		}
		table.Render()

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s\n", color.CyanString("Reply:"), reply.Text)
		for _, miss := range reply.Misses {
			fmt.Fprintf(out, "%s no answer for category %q\n", color.YellowString("Warning:"), miss)
		}
		if reply.Complete {
			fmt.Fprintln(out, color.GreenString("Conversation complete."))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the result as JSON")
	classifyCmd.Flags().BoolVar(&classifyAsync, "async", false, "Queue the message for the worker instead of classifying it here")
}
