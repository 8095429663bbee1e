package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"intentbot/internal/app"
	"intentbot/internal/config"
	"intentbot/internal/logging"
)

// annotationSkipClassifier on a command makes the root skip loading or
// training the category model.
const annotationSkipClassifier = "skip_classifier"

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "intentbot",
	Short: "Intent classification chatbot",
	Long: `intentbot splits incoming messages into sentences, normalizes them to lemmas,
classifies every sentence into a trained category and answers with the
configured reply for each category.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd == cmd.Root() || isCompletion(cmd) {
			return nil
		}

		cfg, err := config.Load(viper.New(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.File != "" {
			log.Debugf("Using config file %s", cfg.File)
		}

		opts := app.Options{SkipClassifier: cmd.Annotations[annotationSkipClassifier] == "true"}
		appInstance, err := app.NewApp(cmd.Context(), cfg, opts)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		// Store the app instance in the command's context
		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			return appInstance.Close()
		}
		return nil
	},
}

func isCompletion(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" || c.Name() == cobra.ShellCompRequestCmd {
			return true
		}
	}
	return false
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// Helper function to retrieve the app instance from context
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:         "doctor",
	Short:       "Check models, database and redis connectivity",
	Annotations: map[string]string{annotationSkipClassifier: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		paths := appInstance.Models.Paths()
		fmt.Fprintf(out, "Models loaded: sentence=%s token=%s pos=%s lemma=%s\n", paths.Sentence, paths.Token, paths.POS, paths.Lemma)

		if appInstance.Store == nil {
			fmt.Fprintln(out, "Database: not configured (history disabled).")
		} else {
			fmt.Fprintln(out, "Checking database connectivity...")
			if err := appInstance.Store.Ping(ctx); err != nil {
				return fmt.Errorf("database ping failed: %w", err)
			}
			fmt.Fprintln(out, "Database connection successful.")
		}

		if appInstance.Config.Redis.Address == "" {
			fmt.Fprintln(out, "Redis: not configured (background jobs disabled).")
			return nil
		}
		fmt.Fprintln(out, "Checking redis connectivity...")
		inspector := asynqInspector(appInstance)
		defer inspector.Close()
		queues, err := inspector.Queues()
		if err != nil {
			return fmt.Errorf("redis check failed: %w", err)
		}
		fmt.Fprintf(out, "Redis connection successful (queues: %v).\n", queues)
		return nil
	},
}
