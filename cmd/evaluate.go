package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"faqrag/src/core/evaluation"
	"faqrag/src/log"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score pipeline answers against reference answers",
	Long: `The evaluate command runs the full query pipeline for each case in a JSON
file of {"query", "reference"} objects and reports token-level precision,
recall and F1 against the references.`,
	Run: Evaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringP("input", "i", "", "Input JSON file with evaluation cases")
	evaluateCmd.MarkFlagRequired("input")
	evaluateCmd.Flags().Int64P("document", "d", 0, "Document id to query against")
	evaluateCmd.MarkFlagRequired("document")
	evaluateCmd.Flags().StringP("output", "o", "", "Report output path (default stdout)")
}

func Evaluate(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	inputPath, _ := cmd.Flags().GetString("input")
	documentID, _ := cmd.Flags().GetInt64("document")
	outputPath, _ := cmd.Flags().GetString("output")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Printf("Failed to read input file: %v\n", err)
		return
	}

	var cases []evaluation.Case
	if err := json.Unmarshal(data, &cases); err != nil {
		fmt.Printf("Failed to parse input file: %v\n", err)
		return
	}

	pipeline, _, db, err := initServices()
	if err != nil {
		fmt.Printf("Failed to initialize services: %v\n", err)
		return
	}
	defer func() {
		if sqlDB, err := db.DB(); err != nil {
			log.Error(err, "Failed to get underlying *sql.DB")
		} else if err := sqlDB.Close(); err != nil {
			log.Error(err, "Error closing database connection")
		}
	}()

	node, err := snowflake.NewNode(2)
	if err != nil {
		fmt.Printf("Failed to create snowflake node: %v\n", err)
		return
	}
	runID := node.Generate().String()

	bar := progressbar.Default(int64(len(cases)), "evaluating")
	results := make([]evaluation.CaseResult, 0, len(cases))
	for _, c := range cases {
		out, err := pipeline.Query(ctx, c.Query, documentID, nil)
		if err != nil {
			fmt.Printf("Query failed for %q: %v\n", c.Query, err)
			return
		}

		var answer strings.Builder
		for token := range out.Stream.Tokens() {
			answer.WriteString(token)
		}

		results = append(results, evaluation.NewCaseResult(c, answer.String()))
		bar.Add(1)
	}

	report := evaluation.BuildReport(runID, documentID, results)
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode report: %v\n", err)
		return
	}

	if outputPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		fmt.Printf("Failed to write report: %v\n", err)
		return
	}
	fmt.Printf("Report written to %s (mean F1 %.3f over %d cases)\n", outputPath, report.MeanF1, len(report.Cases))
}
