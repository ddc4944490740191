package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maggielii/heartwaves/internal/training"
)

var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "Offline clustering model trainer",
	Long:  `Splits labeled wearable feature tables and trains the k-means screening model served by the API.`,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Stratified train/val/test split of a labeled feature table",
	Run: func(cmd *cobra.Command, args []string) {
		input, _ := cmd.Flags().GetString("input")
		outDir, _ := cmd.Flags().GetString("out-dir")
		seed, _ := cmd.Flags().GetInt64("seed")
		trainRatio, _ := cmd.Flags().GetFloat64("train-ratio")
		valRatio, _ := cmd.Flags().GetFloat64("val-ratio")
		if trainRatio < 0 || valRatio < 0 || trainRatio+valRatio > 1 {
			fatalf("train-ratio and val-ratio must be non-negative and sum to at most 1")
		}

		table, err := training.LoadCSV(input)
		if err != nil {
			fatalf("load %s: %v", input, err)
		}

		rng := rand.New(rand.NewSource(seed))
		train, val, test, err := training.SplitTable(table, training.PhenotypeTargetColumn, rng, trainRatio, valRatio)
		if err != nil {
			fatalf("split: %v", err)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fatalf("create %s: %v", outDir, err)
		}
		for name, t := range map[string]*training.Table{
			"train.csv": train,
			"val.csv":   val,
			"test.csv":  test,
		} {
			path := filepath.Join(outDir, name)
			if err := t.WriteCSV(path); err != nil {
				fatalf("write %s: %v", path, err)
			}
		}

		fmt.Printf("split %d records: train=%d val=%d test=%d -> %s\n",
			len(table.Records), len(train.Records), len(val.Records), len(test.Records), outDir)
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the k-means screening model on a prepared split",
	Long: `Fits k-means on the train split, maps clusters to phenotype labels by
majority vote, and evaluates train/val/test with train-derived preprocessing.
Writes model.json, evaluation.json and per-split prediction CSVs to --out-dir.`,
	Run: func(cmd *cobra.Command, args []string) {
		splitDir, _ := cmd.Flags().GetString("split-dir")
		outDir, _ := cmd.Flags().GetString("out-dir")
		k, _ := cmd.Flags().GetInt("k")
		nInit, _ := cmd.Flags().GetInt("n-init")
		maxIters, _ := cmd.Flags().GetInt("max-iters")
		seed, _ := cmd.Flags().GetInt64("seed")
		followupThreshold, _ := cmd.Flags().GetFloat64("followup-threshold")

		opts := training.DefaultOptions()
		opts.K = k
		opts.NInit = nInit
		opts.MaxIters = maxIters
		opts.Seed = seed
		opts.FollowupThreshold = followupThreshold

		splits := make(map[string][]training.Row, 3)
		for _, name := range []string{"train", "val", "test"} {
			path := filepath.Join(splitDir, name+".csv")
			table, err := training.LoadCSV(path)
			if err != nil {
				fatalf("load %s: %v", path, err)
			}
			splits[name] = training.RowsFromTable(table, opts.Features)
		}

		out, err := training.Train(splits["train"], splits["val"], splits["test"], opts)
		if err != nil {
			fatalf("train: %v", err)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fatalf("create %s: %v", outDir, err)
		}
		if err := training.SaveArtifact(filepath.Join(outDir, "model.json"), out.Artifact); err != nil {
			fatalf("write model: %v", err)
		}
		if err := training.SaveEvaluation(filepath.Join(outDir, "evaluation.json"), out.Evaluation); err != nil {
			fatalf("write evaluation: %v", err)
		}
		for name, preds := range map[string]*training.Predictions{
			"predictions_train.csv": out.Train,
			"predictions_val.csv":   out.Val,
			"predictions_test.csv":  out.Test,
		} {
			rows := splits[splitNameFor(name)]
			path := filepath.Join(outDir, name)
			if err := training.WritePredictionsCSV(path, rows, preds); err != nil {
				fatalf("write %s: %v", path, err)
			}
		}

		fmt.Printf("trained k=%d on %d rows, inertia=%.4f -> %s\n",
			opts.K, len(splits["train"]), out.Artifact.TrainInertia, outDir)
	},
}

func splitNameFor(predictionsFile string) string {
	switch predictionsFile {
	case "predictions_train.csv":
		return "train"
	case "predictions_val.csv":
		return "val"
	default:
		return "test"
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func init() {
	splitCmd.Flags().String("input", "data/labeled_features.csv", "labeled feature table CSV")
	splitCmd.Flags().String("out-dir", "data/splits", "directory for train/val/test CSVs")
	splitCmd.Flags().Int64("seed", 42, "PRNG seed for the stratified shuffle")
	splitCmd.Flags().Float64("train-ratio", 0.70, "fraction of each label group for training")
	splitCmd.Flags().Float64("val-ratio", 0.15, "fraction of each label group for validation")

	trainCmd.Flags().String("split-dir", "data/splits", "directory holding train/val/test CSVs")
	trainCmd.Flags().String("out-dir", "data/models/clustering_baseline", "directory for model and evaluation outputs")
	trainCmd.Flags().Int("k", 5, "number of clusters")
	trainCmd.Flags().Int("n-init", 30, "k-means restarts")
	trainCmd.Flags().Int("max-iters", 120, "max Lloyd iterations per restart")
	trainCmd.Flags().Int64("seed", 42, "PRNG seed shared by restarts")
	trainCmd.Flags().Float64("followup-threshold", 0.55, "cluster followup rate above which a cluster maps to needs_followup")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(trainCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
