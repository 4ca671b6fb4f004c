package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	predictDetailed bool
	predictJSON     bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [text]",
	Short: "Classify a single text using the persisted model",
	Long: `Classifies the given text as fake or real news.
Reads from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().BoolVar(&predictDetailed, "detailed", false, "include the strongest features of this input")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(raw))
	}

	application, _, err := buildApp()
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.PredictText(context.Background(), text, predictDetailed)
	if err != nil {
		return err
	}

	if predictJSON {
		data, err := json.MarshalIndent(map[string]any{
			"prediction":            result.Label.String(),
			"confidence":            result.Confidence,
			"confidence_percentage": result.Confidence * 100,
			"original_text_length":  result.OriginalLength,
			"processed_text_length": result.ProcessedLength,
			"top_features":          result.TopFeatures,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%s (%.1f%% confidence)\n", result.Label.String(), result.Confidence*100)
	for _, f := range result.TopFeatures {
		cmd.Printf("  %-24s coef %+.4f  value %.4f\n", f.Term, f.Coefficient, f.Value)
	}
	return nil
}
