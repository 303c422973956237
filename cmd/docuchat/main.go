package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docuchat-labs/docuchat/internal/cli"
	"github.com/docuchat-labs/docuchat/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docuchat",
		Short: "Docuchat CLI - Question answering over your documents",
		Long: `Docuchat CLI provides commands to upload documents and ask questions about them.

Environment variables:
  DOCUCHAT_API_KEY   API key for authentication (only needed when the server enables auth)
  DOCUCHAT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.ListCmd())
	rootCmd.AddCommand(client.GetCmd())
	rootCmd.AddCommand(client.StatusCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.ResetCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
