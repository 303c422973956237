package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// UploadRequest represents the JSON document upload request.
type UploadRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// UploadResponse represents the upload API response.
type UploadResponse struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var (
		name string
		wait bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document",
		Long:  "Uploads a PDF or plain-text file for ingestion. Ingestion runs asynchronously; use --wait to block until it finishes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runUpload(api, args[0], name, wait, outputJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Document name (defaults to the file name, text files only)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for ingestion to complete")

	return cmd
}

func runUpload(api *APIClient, filePath, name string, wait, outputJSON bool) error {
	var resp *APIResponse
	var err error

	if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
		resp, err = api.PostFile("/documents", filePath)
	} else {
		var text []byte
		text, err = os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if name == "" {
			name = filepath.Base(filePath)
		}
		resp, err = api.Post("/documents", UploadRequest{Name: name, Text: string(text)})
	}
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var uploadResp UploadResponse
	if err := json.Unmarshal(resp.Data, &uploadResp); err != nil {
		return fmt.Errorf("failed to parse upload response: %w", err)
	}

	if !wait {
		if outputJSON {
			output, _ := json.MarshalIndent(uploadResp, "", "  ")
			fmt.Println(string(output))
		} else {
			fmt.Printf("Queued (job %s, document %s)\n", uploadResp.JobID, uploadResp.DocumentID)
			fmt.Printf("Check progress with: docuchat status %s\n", uploadResp.JobID)
		}
		return nil
	}

	job, err := waitForJob(api, uploadResp.JobID, 2*time.Second)
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printJob(job)
	if job.Status == "failed" {
		return fmt.Errorf("ingestion failed: %s", job.Error)
	}
	return nil
}
