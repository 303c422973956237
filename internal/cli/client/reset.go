package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResetCmd creates the reset command.
func ResetCmd() *cobra.Command {
	var (
		documentsOnly bool
		historyOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset server state",
		Long:  "Drops the ingested corpus and the conversation history. Use --documents or --history to reset only one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runReset(api, documentsOnly, historyOnly)
		},
	}

	cmd.Flags().BoolVar(&documentsOnly, "documents", false, "Reset only the ingested corpus")
	cmd.Flags().BoolVar(&historyOnly, "history", false, "Reset only the conversation history")

	return cmd
}

func runReset(api *APIClient, documentsOnly, historyOnly bool) error {
	resetDocuments := !historyOnly || documentsOnly
	resetHistory := !documentsOnly || historyOnly

	if resetDocuments {
		if _, err := api.Delete("/documents"); err != nil {
			return fmt.Errorf("failed to reset documents: %w", err)
		}
		fmt.Println("Documents reset.")
	}
	if resetHistory {
		if _, err := api.Delete("/history"); err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
		fmt.Println("History reset.")
	}

	return nil
}
