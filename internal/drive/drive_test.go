package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// newTestService spins up an httptest backend and points a real Drive client
// at it, so the wire encoding and error decoding paths are exercised.
func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := driveapi.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(api)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error": {"code": %d, "message": %q}}`, code, message)
}

func TestService_GetNode(t *testing.T) {
	t.Run("folder node", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /files/tpl", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]string{
				"id":       "tpl",
				"name":     "Client Template",
				"mimeType": FolderMimeType,
			})
		})
		svc := newTestService(t, mux)

		node, err := svc.GetNode(context.Background(), "tpl")
		if err != nil {
			t.Fatalf("GetNode: %v", err)
		}
		if node.ID != "tpl" || node.Name != "Client Template" || !node.IsFolder {
			t.Errorf("node = %+v, want folder tpl/Client Template", node)
		}
	})

	t.Run("file node", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /files/doc", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]string{
				"id":       "doc",
				"name":     "Welcome.pdf",
				"mimeType": "application/pdf",
			})
		})
		svc := newTestService(t, mux)

		node, err := svc.GetNode(context.Background(), "doc")
		if err != nil {
			t.Fatalf("GetNode: %v", err)
		}
		if node.IsFolder {
			t.Errorf("node = %+v, want file", node)
		}
	})

	t.Run("missing id maps to ErrNotFound", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /files/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, http.StatusNotFound, "File not found: nope")
		})
		svc := newTestService(t, mux)

		_, err := svc.GetNode(context.Background(), "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestService_ListChildren(t *testing.T) {
	t.Run("follows page tokens", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query().Get("q")
			want := "'tpl' in parents and trashed=false"
			if q != want {
				t.Errorf("q = %q, want %q", q, want)
			}

			if r.URL.Query().Get("pageToken") == "" {
				writeJSON(t, w, map[string]any{
					"nextPageToken": "page2",
					"files": []map[string]string{
						{"id": "a", "name": "A", "mimeType": FolderMimeType},
					},
				})
				return
			}
			writeJSON(t, w, map[string]any{
				"files": []map[string]string{
					{"id": "b", "name": "B.txt", "mimeType": "text/plain"},
				},
			})
		})
		svc := newTestService(t, mux)

		nodes, err := svc.ListChildren(context.Background(), "tpl")
		if err != nil {
			t.Fatalf("ListChildren: %v", err)
		}
		if len(nodes) != 2 {
			t.Fatalf("got %d nodes, want 2", len(nodes))
		}
		if !nodes[0].IsFolder || nodes[0].Name != "A" {
			t.Errorf("nodes[0] = %+v, want folder A", nodes[0])
		}
		if nodes[1].IsFolder || nodes[1].Name != "B.txt" {
			t.Errorf("nodes[1] = %+v, want file B.txt", nodes[1])
		}
	})

	t.Run("empty folder", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, map[string]any{"files": []map[string]string{}})
		})
		svc := newTestService(t, mux)

		nodes, err := svc.ListChildren(context.Background(), "tpl")
		if err != nil {
			t.Fatalf("ListChildren: %v", err)
		}
		if len(nodes) != 0 {
			t.Errorf("got %d nodes, want 0", len(nodes))
		}
	})
}

func TestService_CreateFolder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files", func(w http.ResponseWriter, r *http.Request) {
		var body driveapi.File
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Name != "Acme (L2)" {
			t.Errorf("name = %q, want %q", body.Name, "Acme (L2)")
		}
		if body.MimeType != FolderMimeType {
			t.Errorf("mimeType = %q, want folder", body.MimeType)
		}
		if len(body.Parents) != 1 || body.Parents[0] != "dest" {
			t.Errorf("parents = %v, want [dest]", body.Parents)
		}
		writeJSON(t, w, map[string]string{"id": "new-folder"})
	})
	svc := newTestService(t, mux)

	id, err := svc.CreateFolder(context.Background(), "Acme (L2)", "dest")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if id != "new-folder" {
		t.Errorf("id = %q, want new-folder", id)
	}
}

func TestService_CopyFile(t *testing.T) {
	t.Run("copies with new name and parent", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /files/src/copy", func(w http.ResponseWriter, r *http.Request) {
			var body driveapi.File
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Name != "Acme Authorized User List" {
				t.Errorf("name = %q", body.Name)
			}
			if len(body.Parents) != 1 || body.Parents[0] != "dst" {
				t.Errorf("parents = %v, want [dst]", body.Parents)
			}
			writeJSON(t, w, map[string]string{"id": "copy-1"})
		})
		svc := newTestService(t, mux)

		id, err := svc.CopyFile(context.Background(), "src", "Acme Authorized User List", "dst")
		if err != nil {
			t.Fatalf("CopyFile: %v", err)
		}
		if id != "copy-1" {
			t.Errorf("id = %q, want copy-1", id)
		}
	})

	t.Run("permission failure maps to ErrPermission", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /files/src/copy", func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, http.StatusForbidden, "The user does not have sufficient permissions")
		})
		svc := newTestService(t, mux)

		_, err := svc.CopyFile(context.Background(), "src", "X", "dst")
		if !errors.Is(err, ErrPermission) {
			t.Fatalf("err = %v, want ErrPermission", err)
		}
	})

	t.Run("expired credential maps to ErrAuthentication", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /files/src/copy", func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, http.StatusUnauthorized, "Invalid Credentials")
		})
		svc := newTestService(t, mux)

		_, err := svc.CopyFile(context.Background(), "src", "X", "dst")
		if !errors.Is(err, ErrAuthentication) {
			t.Fatalf("err = %v, want ErrAuthentication", err)
		}
	})
}

func TestNew_RejectsMalformedKey(t *testing.T) {
	_, err := New(context.Background(), []byte("not json"))
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}
