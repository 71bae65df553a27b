package drive

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Terminal error classes surfaced by the Drive boundary. Callers match them
// with errors.Is; anything that is none of these is an unexpected failure.
// All of them abort the run without cleanup of already-created folders.
var (
	ErrAuthentication = errors.New("drive: authentication failed")
	ErrNotFound       = errors.New("drive: not found")
	ErrPermission     = errors.New("drive: permission denied")
)

// wrapErr classifies an SDK error into the package taxonomy. The original
// error text is kept so the run logs show what the API actually said.
func wrapErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %v", op, ErrAuthentication, err)
		case http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", op, ErrPermission, err)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %v", op, ErrNotFound, err)
		}
	}

	// Token fetch failures (bad or expired service-account key) surface as
	// oauth2 errors, not googleapi ones.
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%s: %w: %v", op, ErrAuthentication, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
