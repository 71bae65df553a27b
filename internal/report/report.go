// Package report posts run results back to the triggering GitHub issue.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"github.com/sirupsen/logrus"

	"github.com/sagehill/clientfolders/internal/types"
)

// Reporter comments on, and closes, the issue that triggered a run.
type Reporter struct {
	client *github.Client
	owner  string
	repo   string
	log    *logrus.Entry
}

// New creates a Reporter for an "owner/name" repository slug. An empty token
// produces an unauthenticated client, which GitHub limits to 60 requests/hour
// and rejects for private repositories.
func New(token, repository string) (*Reporter, error) {
	owner, repo, err := SplitRepository(repository)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return NewWithClient(client, owner, repo), nil
}

// NewWithClient wires an existing client. This is primarily used for testing
// with httptest servers.
func NewWithClient(client *github.Client, owner, repo string) *Reporter {
	return &Reporter{
		client: client,
		owner:  owner,
		repo:   repo,
		log:    logrus.WithField("component", "report"),
	}
}

// ReportSuccess posts the success comment and closes the issue.
func (r *Reporter) ReportSuccess(ctx context.Context, issueNumber int, org string, res types.ReplicationResult) error {
	if err := r.comment(ctx, issueNumber, successComment(org, res)); err != nil {
		return err
	}

	state := "closed"
	if _, _, err := r.client.Issues.Edit(ctx, r.owner, r.repo, issueNumber, &github.IssueRequest{State: &state}); err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", issueNumber, err)
	}

	r.log.WithField("issue", issueNumber).Info("issue closed")
	return nil
}

// ReportFailure posts the failure comment. The issue stays open so the run
// can be retriggered after the configuration or credential is fixed.
func (r *Reporter) ReportFailure(ctx context.Context, issueNumber int, org string, runErr error) error {
	return r.comment(ctx, issueNumber, failureComment(org, runErr))
}

func (r *Reporter) comment(ctx context.Context, issueNumber int, body string) error {
	_, _, err := r.client.Issues.CreateComment(ctx, r.owner, r.repo, issueNumber, &github.IssueComment{Body: &body})
	if err != nil {
		return fmt.Errorf("failed to comment on issue #%d: %w", issueNumber, err)
	}
	return nil
}

// SplitRepository parses an "owner/name" repository slug.
func SplitRepository(repository string) (owner, repo string, err error) {
	parts := strings.SplitN(strings.TrimSpace(repository), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/name", repository)
	}
	return parts[0], parts[1], nil
}
