// Package replicator copies a template folder tree for a new organization.
package replicator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sagehill/clientfolders/internal/config"
	"github.com/sagehill/clientfolders/internal/drive"
	"github.com/sagehill/clientfolders/internal/types"
)

// ErrInvalidRequest flags requests rejected before any remote call is made.
var ErrInvalidRequest = errors.New("invalid replication request")

// Service copies the template tree and applies the configured user-list rename.
type Service struct {
	store  drive.Client
	naming config.FolderStructure
	log    *logrus.Entry
}

// New creates a replicator backed by the given remote store.
func New(store drive.Client, naming config.FolderStructure) *Service {
	return &Service{
		store:  store,
		naming: naming,
		log:    logrus.WithField("component", "replicator"),
	}
}

// Replicate creates "<org><main_folder_suffix>" under the destination parent
// and fills it with a recursive copy of the template folder's contents. The
// template and destination identifiers are resolved before anything is
// created, so a bad identifier leaves the destination untouched. A failure
// mid-copy aborts the run and leaves the partial tree in place; there is no
// rollback and no protection against duplicate runs.
func (s *Service) Replicate(ctx context.Context, req types.ReplicationRequest) (types.ReplicationResult, error) {
	org := strings.TrimSpace(req.Organization)
	if org == "" {
		return types.ReplicationResult{}, fmt.Errorf("%w: organization name is empty", ErrInvalidRequest)
	}

	if err := s.checkFolder(ctx, req.TemplateFolderID, "template"); err != nil {
		return types.ReplicationResult{}, err
	}
	if err := s.checkFolder(ctx, req.DestinationFolderID, "destination"); err != nil {
		return types.ReplicationResult{}, err
	}

	rootName := org + s.naming.MainFolderSuffix
	s.log.WithField("folder", rootName).Info("creating main folder")
	rootID, err := s.store.CreateFolder(ctx, rootName, req.DestinationFolderID)
	if err != nil {
		return types.ReplicationResult{}, err
	}

	if err := s.copyContents(ctx, req.TemplateFolderID, rootID, org); err != nil {
		return types.ReplicationResult{}, err
	}

	return types.ReplicationResult{
		FolderID:   rootID,
		FolderName: rootName,
		FolderURL:  FolderURL(rootID),
	}, nil
}

// checkFolder resolves id and requires it to be a folder.
func (s *Service) checkFolder(ctx context.Context, id, role string) error {
	node, err := s.store.GetNode(ctx, id)
	if err != nil {
		return fmt.Errorf("%s folder: %w", role, err)
	}
	if !node.IsFolder {
		return fmt.Errorf("%s folder %s: %w: not a folder", role, id, drive.ErrNotFound)
	}
	return nil
}

// copyContents copies every child of srcID into dstID, depth first. Files keep
// their names except the configured user-list file, which is copied as
// "<org><user_list_suffix>". Sibling order follows whatever the listing
// returns; nothing depends on it.
func (s *Service) copyContents(ctx context.Context, srcID, dstID, org string) error {
	children, err := s.store.ListChildren(ctx, srcID)
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.IsFolder {
			s.log.WithField("folder", child.Name).Info("creating subfolder")
			subID, err := s.store.CreateFolder(ctx, child.Name, dstID)
			if err != nil {
				return err
			}
			if err := s.copyContents(ctx, child.ID, subID, org); err != nil {
				return err
			}
			continue
		}

		name := child.Name
		if name == s.naming.UserListOriginalName {
			name = org + s.naming.UserListSuffix
		}
		s.log.WithFields(logrus.Fields{"file": child.Name, "as": name}).Info("copying file")
		if _, err := s.store.CopyFile(ctx, child.ID, name, dstID); err != nil {
			return err
		}
	}

	return nil
}

// FolderURL returns the browser URL for a Drive folder.
func FolderURL(id string) string {
	return "https://drive.google.com/drive/folders/" + id
}
