package cli

import (
	"errors"
	"os"

	"github.com/dmitrijs2005/securedrive/internal/client/client"
	"github.com/dmitrijs2005/securedrive/internal/common"
	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.Bold).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	dimColor     = color.New(color.Faint).SprintFunc()
)

var errPasswordMismatch = errors.New("passwords do not match")

// describeError turns an error into the message shown to the user. Auth and
// crypto failures share one generic text.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrAuthFailure),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorForbidden):
		return "operation failed"
	case errors.Is(err, errPasswordMismatch):
		return "passwords do not match"
	case errors.Is(err, common.ErrorNotFound):
		return "file not found"
	case errors.Is(err, common.ErrorConflict):
		return "email is already registered"
	case errors.Is(err, common.ErrorInvalidInput):
		return "invalid input"
	case errors.Is(err, client.ErrTooLarge):
		return "file is too large"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, os.ErrNotExist):
		return "no such local file"
	default:
		return "operation failed"
	}
}
