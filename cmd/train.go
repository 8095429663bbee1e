package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"intentbot/internal/services"
)

var (
	trainCorpus     string
	trainOut        string
	trainIterations int
	trainCutoff     int
)

// trainCmd trains the category model and optionally writes it to disk.
var trainCmd = &cobra.Command{
	Use:         "train",
	Short:       "Train the category model from a corpus",
	Long:        `Reads a training corpus (one "<category> <text>" sample per line), lemmatizes every sample with the loaded models and fits a maximum-entropy category model.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipClassifier: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		opts := appInstance.ClassifierOptions()
		if cmd.Flags().Changed("corpus") {
			opts.Corpus = trainCorpus
		}
		if cmd.Flags().Changed("out") {
			opts.ModelPath = trainOut
		}
		if cmd.Flags().Changed("iterations") {
			opts.Params.Iterations = trainIterations
		}
		if cmd.Flags().Changed("cutoff") {
			opts.Params.Cutoff = trainCutoff
		}
		if opts.Corpus == "" {
			return fmt.Errorf("no corpus: set classifier.corpus or pass --corpus")
		}
		opts.Retrain = true

		model, err := services.LoadOrTrainClassifier(cmd.Context(), appInstance.Normalizer, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Trained %d categories over %d predicates from %s\n", len(model.Labels()), model.NumPredicates(), opts.Corpus)
		for _, label := range model.Labels() {
			fmt.Fprintf(out, "  %s\n", label)
		}
		if opts.ModelPath != "" {
			fmt.Fprintf(out, "Model written to %s\n", opts.ModelPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&trainCorpus, "corpus", "", "Training corpus (overrides classifier.corpus)")
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "", "Write the trained model here (overrides classifier.model_path)")
	trainCmd.Flags().IntVar(&trainIterations, "iterations", 0, "Training iterations (overrides classifier.iterations)")
	trainCmd.Flags().IntVar(&trainCutoff, "cutoff", 0, "Predicate cutoff (overrides classifier.cutoff)")
}
