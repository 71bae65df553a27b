// Package drive wraps the Google Drive v3 API for folder replication.
package drive

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/sagehill/clientfolders/internal/types"
)

// FolderMimeType distinguishes folders from regular files in Drive metadata.
const FolderMimeType = "application/vnd.google-apps.folder"

// Client is the remote-store surface the replicator needs.
type Client interface {
	// GetNode resolves an identifier to a file or folder.
	GetNode(ctx context.Context, id string) (types.Node, error)
	// ListChildren returns every non-trashed direct child of a folder.
	ListChildren(ctx context.Context, folderID string) ([]types.Node, error)
	// CreateFolder creates a folder under parentID and returns its identifier.
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	// CopyFile copies fileID under parentID as name and returns the copy's identifier.
	CopyFile(ctx context.Context, fileID, name, parentID string) (string, error)
}

// Service implements Client against the Drive v3 API.
type Service struct {
	files *driveapi.FilesService
	log   *logrus.Entry
}

// New authenticates with a complete service-account key and returns a Service
// scoped to full Drive access, matching what the copy operations require.
func New(ctx context.Context, serviceAccountJSON []byte, opts ...option.ClientOption) (*Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, serviceAccountJSON, driveapi.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	all := append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	svc, err := driveapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to build drive service: %w", err)
	}

	return NewWithService(svc), nil
}

// NewWithService wraps an existing API service, primarily for httptest servers.
func NewWithService(svc *driveapi.Service) *Service {
	return &Service{
		files: svc.Files,
		log:   logrus.WithField("component", "drive"),
	}
}

// GetNode resolves id to a Node.
func (s *Service) GetNode(ctx context.Context, id string) (types.Node, error) {
	f, err := s.files.Get(id).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return types.Node{}, wrapErr(fmt.Sprintf("get %s", id), err)
	}
	return nodeFromFile(f), nil
}

// ListChildren returns every non-trashed direct child of folderID, following
// page tokens so large template folders list completely.
func (s *Service) ListChildren(ctx context.Context, folderID string) ([]types.Node, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var nodes []types.Node
	pageToken := ""
	for {
		call := s.files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, wrapErr(fmt.Sprintf("list children of %s", folderID), err)
		}

		for _, f := range res.Files {
			nodes = append(nodes, nodeFromFile(f))
		}

		if res.NextPageToken == "" {
			return nodes, nil
		}
		pageToken = res.NextPageToken
	}
}

// CreateFolder creates a folder named name under parentID.
func (s *Service) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &driveapi.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}

	f, err := s.files.Create(meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", wrapErr(fmt.Sprintf("create folder %q", name), err)
	}

	s.log.WithFields(logrus.Fields{"id": f.Id, "name": name}).Debug("created folder")
	return f.Id, nil
}

// CopyFile copies fileID under parentID with the given name.
func (s *Service) CopyFile(ctx context.Context, fileID, name, parentID string) (string, error) {
	meta := &driveapi.File{
		Name:    name,
		Parents: []string{parentID},
	}

	f, err := s.files.Copy(fileID, meta).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", wrapErr(fmt.Sprintf("copy file %q", name), err)
	}

	s.log.WithFields(logrus.Fields{"id": f.Id, "name": name}).Debug("copied file")
	return f.Id, nil
}

func nodeFromFile(f *driveapi.File) types.Node {
	return types.Node{
		ID:       f.Id,
		Name:     f.Name,
		IsFolder: f.MimeType == FolderMimeType,
	}
}
