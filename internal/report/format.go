package report

import (
	"fmt"

	"github.com/sagehill/clientfolders/internal/types"
)

func successComment(org string, res types.ReplicationResult) string {
	return fmt.Sprintf(`✅ Folder structure created for **%s**.

- Folder: [%s](%s)

Closing this issue automatically.`, org, res.FolderName, res.FolderURL)
}

func failureComment(org string, runErr error) string {
	return fmt.Sprintf("❌ Failed to create the folder structure for **%s**.\n\n```\n%v\n```\n\nSee the workflow run logs for details.", org, runErr)
}
