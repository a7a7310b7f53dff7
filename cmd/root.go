package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "faqrag",
	Short: "A retrieval-augmented FAQ answering service",
	Long: `faqrag answers user questions from a per-document FAQ knowledge base.
Uploaded question/answer files are embedded and stored in Postgres with
pgvector; queries are heuristically rewritten, matched against the nearest
FAQ answers and answered by a streaming language model.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
