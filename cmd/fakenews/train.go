package main

import (
	"context"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model from the corpus directory and persist the artifact",
	RunE:  runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	application, _, err := buildApp()
	if err != nil {
		return err
	}
	defer application.Close()

	metrics, err := application.Train(context.Background())
	if err != nil {
		return err
	}

	cmd.Printf("accuracy  %.4f\n", metrics.Accuracy)
	cmd.Printf("precision %.4f\n", metrics.Precision)
	cmd.Printf("recall    %.4f\n", metrics.Recall)
	cmd.Printf("f1        %.4f\n", metrics.F1)
	cmd.Printf("samples   %d train / %d test\n", metrics.TrainSamples, metrics.TestSamples)
	return nil
}
