// Package types defines the data structures shared across the replicator.
package types

type (
	// Node describes a single file or folder in the remote store.
	Node struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		IsFolder bool   `json:"isFolder"`
	}
)
