package types

type (
	// ReplicationRequest describes one copy-and-rename run. It is built once
	// from the CLI input plus the static settings and never mutated.
	ReplicationRequest struct {
		Organization        string `json:"organization"`
		TemplateFolderID    string `json:"templateFolderId"`
		DestinationFolderID string `json:"destinationFolderId"`
	}

	// ReplicationResult identifies the root of the created folder tree.
	ReplicationResult struct {
		FolderID   string `json:"folder_id"`
		FolderName string `json:"folder_name"`
		FolderURL  string `json:"folder_url"`
	}
)
