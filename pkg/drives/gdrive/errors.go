package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/datatug/drivetug/pkg/drives"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// classify maps transport and API errors onto the drives error kinds.
func classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w: %w", op, drives.ErrInteractiveAuthRequired, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %w", op, drives.ErrInteractiveAuthRequired, err)
		case http.StatusForbidden:
			if hasReason(apiErr, "insufficientPermissions", "insufficientScopes", "insufficientFilePermissions") {
				return fmt.Errorf("%s: %w: %w", op, drives.ErrPermissionRequired, err)
			}
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %w", op, drives.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, drives.ErrRemoteUnavailable, err)
}

func hasReason(apiErr *googleapi.Error, reasons ...string) bool {
	for _, item := range apiErr.Errors {
		for _, reason := range reasons {
			if item.Reason == reason {
				return true
			}
		}
	}
	return false
}
