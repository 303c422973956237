package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Document represents a document in API responses.
type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	CreatedAt string `json:"created_at"`
}

// DocumentListResponse represents the document list API response.
type DocumentListResponse struct {
	Items []Document `json:"items"`
}

// ListCmd creates the list command.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Long:  "Lists every ingested document, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runList(api, outputJSON)
		},
	}
}

func runList(api *APIClient, outputJSON bool) error {
	resp, err := api.Get("/documents")
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var listResp DocumentListResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse document list: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	fmt.Printf("%d documents:\n\n", len(listResp.Items))
	for _, doc := range listResp.Items {
		fmt.Printf("  %s\n", doc.Name)
		fmt.Printf("    ID: %s  Pages: %d  Chunks: %d\n", doc.ID, doc.Pages, doc.Chunks)
	}

	return nil
}

// GetCmd creates the get command.
func GetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <document-id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runGet(api, args[0], outputJSON)
		},
	}
}

func runGet(api *APIClient, id string, outputJSON bool) error {
	resp, err := api.Get("/documents/" + id)
	if err != nil {
		return fmt.Errorf("failed to fetch document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(resp.Data, &doc); err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(doc, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Name:    %s\n", doc.Name)
	fmt.Printf("ID:      %s\n", doc.ID)
	fmt.Printf("Pages:   %d\n", doc.Pages)
	fmt.Printf("Chunks:  %d\n", doc.Chunks)
	fmt.Printf("Created: %s\n", doc.CreatedAt)

	return nil
}
