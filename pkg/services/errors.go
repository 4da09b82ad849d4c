package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kerbaras/shinobix/pkg/data"
	"github.com/kerbaras/shinobix/pkg/sources"
	"github.com/kerbaras/shinobix/pkg/utils"
)

var (
	// ErrNotFound means the entry is not part of the media's feed.
	ErrNotFound          = errors.New("entry not found")
	ErrNothingToContinue = errors.New("nothing to continue")
)

// NothingToContinueError is returned by Continue when no position was
// ever recorded for the kind.
type NothingToContinueError struct {
	Kind data.MediaKind
}

func (e *NothingToContinueError) Error() string {
	return fmt.Sprintf("you haven't %s anything yet", e.Kind.Verb())
}

func (e *NothingToContinueError) Is(target error) bool {
	return target == ErrNothingToContinue
}

// UserMessage turns any error coming out of the controller into a line
// fit for an empty-state panel.
func UserMessage(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	var nothing *NothingToContinueError
	if errors.As(err, &nothing) {
		return fmt.Sprintf("You haven't %s anything yet", nothing.Kind.Verb())
	}
	var catErr *sources.CatalogError
	if errors.As(err, &catErr) {
		return catErr.Message
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "Episode or chapter not found."
	case errors.Is(err, sources.ErrNotFound):
		return "This title could not be found."
	case errors.Is(err, utils.ErrFetchFailed):
		return "Couldn't reach the catalog. Try again in a moment."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Try again."
	}
	return "Something went wrong. Try again."
}
