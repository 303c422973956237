package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// JobResponse represents the ingest job status API response.
type JobResponse struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Status       string `json:"status"`
	Retries      int    `json:"retries"`
	Error        string `json:"error,omitempty"`
	Chunks       int    `json:"chunks"`
	CreatedAt    string `json:"created_at"`
	ProcessedAt  string `json:"processed_at,omitempty"`
}

// StatusCmd creates the status command.
func StatusCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show ingest job status",
		Long:  "Shows the status of an ingest job, optionally waiting until it reaches a terminal state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			return runStatus(api, args[0], wait, outputJSON)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait until the job completes or fails")

	return cmd
}

func runStatus(api *APIClient, jobID string, wait, outputJSON bool) error {
	var job *JobResponse
	var err error

	if wait {
		job, err = waitForJob(api, jobID, 2*time.Second)
	} else {
		job, err = fetchJob(api, jobID)
	}
	if err != nil {
		return err
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	printJob(job)
	return nil
}

func fetchJob(api *APIClient, jobID string) (*JobResponse, error) {
	resp, err := api.Get("/documents/jobs/" + jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}

	var job JobResponse
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return &job, nil
}

// waitForJob polls until the job is completed or failed.
func waitForJob(api *APIClient, jobID string, interval time.Duration) (*JobResponse, error) {
	for {
		job, err := fetchJob(api, jobID)
		if err != nil {
			return nil, err
		}
		if job.Status == "completed" || job.Status == "failed" {
			return job, nil
		}
		time.Sleep(interval)
	}
}

func printJob(job *JobResponse) {
	fmt.Printf("Job:      %s\n", job.ID)
	fmt.Printf("Document: %s (%s)\n", job.DocumentName, job.DocumentID)
	fmt.Printf("Status:   %s\n", job.Status)
	if job.Retries > 0 {
		fmt.Printf("Retries:  %d\n", job.Retries)
	}
	if job.Status == "completed" {
		fmt.Printf("Chunks:   %d\n", job.Chunks)
	}
	if job.Error != "" {
		fmt.Printf("Error:    %s\n", job.Error)
	}
}
