package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ConversationTurn represents one logged question/answer pair.
type ConversationTurn struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	CitedChunks []string `json:"cited_chunks"`
	CreatedAt   string   `json:"created_at"`
}

// HistoryResponse represents the history API response.
type HistoryResponse struct {
	Turns []ConversationTurn `json:"turns"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show conversation history",
		Long:  "Shows the logged question/answer turns, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runHistory(api, outputJSON)
		},
	}
}

func runHistory(api *APIClient, outputJSON bool) error {
	resp, err := api.Get("/history")
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	var historyResp HistoryResponse
	if err := json.Unmarshal(resp.Data, &historyResp); err != nil {
		return fmt.Errorf("failed to parse history: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(historyResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(historyResp.Turns) == 0 {
		fmt.Println("No conversation history.")
		return nil
	}

	for i, turn := range historyResp.Turns {
		fmt.Printf("Q: %s\n", turn.Question)
		fmt.Printf("A: %s\n", turn.Answer)
		if len(turn.CitedChunks) > 0 {
			fmt.Printf("   Cited: %s\n", strings.Join(turn.CitedChunks, ", "))
		}
		if i < len(historyResp.Turns)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}
