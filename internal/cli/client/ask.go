package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the ask API request.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// RetrievedChunk represents one retrieved chunk in the ask response.
type RetrievedChunk struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	Page       int     `json:"page,omitempty"`
	Score      float32 `json:"score"`
}

// AskResponse represents the ask API response.
type AskResponse struct {
	Answer    string           `json:"answer"`
	Grounded  bool             `json:"grounded"`
	Citations []string         `json:"citations"`
	Retrieved []RetrievedChunk `json:"retrieved"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  "Asks a question against the ingested documents and prints the answer with its sources.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runAsk(api, args[0], topK, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (0 uses the server default)")

	return cmd
}

func runAsk(api *APIClient, question string, topK int, outputJSON bool) error {
	resp, err := api.Post("/ask", AskRequest{Question: question, TopK: topK})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(askResp.Answer)

	if askResp.Grounded && len(askResp.Retrieved) > 0 {
		fmt.Printf("\n%s\n", strings.Repeat("-", 40))
		fmt.Printf("Sources (%d chunks):\n", len(askResp.Retrieved))
		for _, chunk := range askResp.Retrieved {
			if chunk.Page > 0 {
				fmt.Printf("  %s (page %d, score %.3f)\n", chunk.ID, chunk.Page, chunk.Score)
			} else {
				fmt.Printf("  %s (score %.3f)\n", chunk.ID, chunk.Score)
			}
		}
	}

	return nil
}
