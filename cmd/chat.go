package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"intentbot/internal/models"
	"intentbot/internal/services"
)

// chatCmd is an interactive conversation on stdin/stdout. It ends when a
// message falls into the closing category, on EOF, or on "/quit".
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		prompt := color.New(color.FgGreen, color.Bold).SprintFunc()
		bot := color.New(color.FgCyan).SprintFunc()

		fmt.Fprintf(out, "Chatting with intentbot. Type %s to measure latency, /quit to leave.\n", services.PingCommand)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, prompt("you> "))
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "/quit" {
				return nil
			}

			reply, err := appInstance.Responder.Reply(ctx, services.Message{
				ID:         uuid.New(),
				Text:       line,
				ReceivedAt: time.Now(),
			})
			if errors.Is(err, models.ErrEmptyMessage) {
				continue
			}
			if err != nil {
				return err
			}
			for _, miss := range reply.Misses {
				log.Warnf("No answer for category %q", miss)
			}
			if reply.Reply != "" {
				fmt.Fprintf(out, "%s %s\n", bot("bot>"), reply.Reply)
			}
			if reply.Complete {
				fmt.Fprintln(out, bot("Conversation complete."))
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
