// Package main implements the client folder automation CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sagehill/clientfolders/internal/config"
	"github.com/sagehill/clientfolders/internal/drive"
	"github.com/sagehill/clientfolders/internal/replicator"
	"github.com/sagehill/clientfolders/internal/report"
	"github.com/sagehill/clientfolders/internal/types"
)

var (
	configPath  string
	repository  string
	issueNumber int
	logLevel    string
)

// runResult is the JSON envelope the surrounding automation consumes, printed
// to stdout regardless of outcome.
type runResult struct {
	Success    bool   `json:"success"`
	FolderID   string `json:"folder_id,omitempty"`
	FolderName string `json:"folder_name,omitempty"`
	FolderURL  string `json:"folder_url,omitempty"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message"`
}

func main() {
	cmd := &cobra.Command{
		Use:   "clientfolders <organization>",
		Short: "Create a client folder tree in Google Drive from a template",
		Long: `clientfolders copies a template folder tree in Google Drive into a new
"<organization> (L2)" folder under the configured destination, renaming the
authorized user list file for the organization, and reports the result back
to the triggering issue.

The Drive service-account key is read from GOOGLE_SERVICE_ACCOUNT_JSON and
the issue-reporting token from GITHUB_TOKEN.`,
		Example:      `clientfolders "Acme Corp" --config config.yaml --repo sagehill/client-intake --issue 42`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the settings file (JSON or YAML)")
	cmd.Flags().StringVar(&repository, "repo", "", "owner/name of the repository whose issue receives the report")
	cmd.Flags().IntVar(&issueNumber, "issue", 0, "number of the triggering issue")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	setupLogging()

	ctx := cmd.Context()
	organization := args[0]

	settings, runErr := config.Load(configPath)

	var res types.ReplicationResult
	if runErr == nil {
		res, runErr = replicate(ctx, settings, organization)
	}

	reportResult(ctx, settings, organization, res, runErr)

	if err := printResult(cmd.OutOrStdout(), organization, res, runErr); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func replicate(ctx context.Context, settings config.Settings, organization string) (types.ReplicationResult, error) {
	key, err := config.ServiceAccountJSON()
	if err != nil {
		return types.ReplicationResult{}, err
	}

	store, err := drive.New(ctx, key)
	if err != nil {
		return types.ReplicationResult{}, err
	}

	svc := replicator.New(store, settings.Folders)
	return svc.Replicate(ctx, types.ReplicationRequest{
		Organization:        organization,
		TemplateFolderID:    settings.Drive.TemplateFolderID,
		DestinationFolderID: settings.Drive.DestinationFolderID,
	})
}

// reportResult posts the outcome to the triggering issue when one was given.
// Reporting is best effort: its errors are logged and never mask the run error.
func reportResult(ctx context.Context, settings config.Settings, organization string, res types.ReplicationResult, runErr error) {
	repoSlug := repository
	if repoSlug == "" {
		repoSlug = settings.GitHub.Repository
	}
	if repoSlug == "" || issueNumber == 0 {
		return
	}

	reporter, err := report.New(config.GitHubToken(), repoSlug)
	if err != nil {
		logrus.WithError(err).Warn("issue reporting disabled")
		return
	}

	if runErr != nil {
		if err := reporter.ReportFailure(ctx, issueNumber, organization, runErr); err != nil {
			logrus.WithError(err).Warn("failed to report failure to issue")
		}
		return
	}

	if err := reporter.ReportSuccess(ctx, issueNumber, organization, res); err != nil {
		logrus.WithError(err).Warn("failed to report success to issue")
	}
}

func printResult(w io.Writer, organization string, res types.ReplicationResult, runErr error) error {
	out := runResult{
		Success:    runErr == nil,
		FolderID:   res.FolderID,
		FolderName: res.FolderName,
		FolderURL:  res.FolderURL,
		Message:    fmt.Sprintf("Successfully created folder structure for %s", organization),
	}
	if runErr != nil {
		out.Error = runErr.Error()
		out.Message = fmt.Sprintf("Failed to create folder structure for %s", organization)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// setupLogging sends structured logs to stderr so stdout carries only the
// result envelope.
func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
