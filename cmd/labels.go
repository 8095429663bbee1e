package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// labelsCmd prints the trained categories and their configured answers.
var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the model's categories and their answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		resolver := appInstance.Responder.Resolver()

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Category", "Answer"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, label := range appInstance.Responder.Labels() {
			answer, err := resolver.Resolve(label)
			switch {
			case label == resolver.ClosingCategory() && err != nil:
				answer = "(ends the conversation)"
			case label == resolver.ClosingCategory():
				answer = fmt.Sprintf("(ends the conversation) %s", answer)
			case err != nil:
				answer = color.YellowString("(no answer configured)")
			}
			table.Append([]string{label, answer})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}
