// Package main implements the buildq CLI for interacting with the API server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var apiURL string

func main() {
	root := &cobra.Command{Use: "buildq", Short: "buildq CLI"}
	root.PersistentFlags().StringVar(&apiURL, "api", envOr("BUILDQ_API", "http://localhost:8080"), "buildq API base URL")

	root.AddCommand(submitCmd(), cancelCmd(), listCmd(), buildsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func submitCmd() *cobra.Command {
	var requester string
	cmd := &cobra.Command{
		Use:   "submit <branch>",
		Short: "Submit a build for a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]string{
				"branch":    args[0],
				"requester": requester,
			})
			resp, err := http.Post(apiURL+"/jobs", "application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			return printResponse(resp.StatusCode == http.StatusAccepted, resp)
		},
	}
	cmd.Flags().StringVarP(&requester, "requester", "r", defaultRequester(), "who to notify about this build")
	return cmd
}

func cancelCmd() *cobra.Command {
	var requester string
	cmd := &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequest(http.MethodDelete, apiURL+"/jobs/"+args[0], nil)
			if err != nil {
				return err
			}
			req.Header.Set("X-Requester", requester)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			return printResponse(resp.StatusCode == http.StatusOK, resp)
		},
	}
	cmd.Flags().StringVarP(&requester, "requester", "r", defaultRequester(), "who is cancelling")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued and running builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(apiURL + "/jobs")
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			var list struct {
				Jobs []struct {
					JobID     int64  `json:"job_id"`
					Branch    string `json:"branch"`
					Requester string `json:"requester"`
					Status    string `json:"status"`
				} `json:"jobs"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
				return err
			}
			if len(list.Jobs) == 0 {
				fmt.Println("queue is empty")
				return nil
			}
			for _, j := range list.Jobs {
				fmt.Printf("#%d  %-12s %-24s %s\n", j.JobID, j.Status, j.Branch, j.Requester)
			}
			return nil
		},
	}
}

func buildsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "builds",
		Short: "Show recent finished builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(apiURL + "/builds")
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			var builds struct {
				Builds []struct {
					JobID   int64  `json:"job_id"`
					Branch  string `json:"branch"`
					Success bool   `json:"success"`
					Log     string `json:"log"`
				} `json:"builds"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&builds); err != nil {
				return err
			}
			if len(builds.Builds) == 0 {
				fmt.Println("no builds yet")
				return nil
			}
			for _, b := range builds.Builds {
				mark := "ok"
				if !b.Success {
					mark = "FAILED"
				}
				fmt.Printf("#%d  %-7s %-24s %s\n", b.JobID, mark, b.Branch, b.Log)
			}
			return nil
		},
	}
}

func defaultRequester() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "anonymous"
}

// printResponse echoes the server's JSON body and fails the command on
// a non-success status.
func printResponse(ok bool, resp *http.Response) error {
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	out, _ := json.MarshalIndent(body, "", "  ")
	fmt.Println(string(out))
	if !ok {
		return fmt.Errorf("request failed with status %s", resp.Status)
	}
	return nil
}
