// Package usecase composes the list, detail, submission and modal
// components into the pages of the portal.
package usecase

import (
	"errors"
	"fmt"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/listing"
	"github.com/fadilmartias/ats-portal/internal/service"
	"go.uber.org/zap"
)

const MsgDownloadFailed = "Could not download the file."

var ErrNotFound = errors.New("item is not on the current page")

// PageError is an error whose text is meant for the page. The cause is kept
// for logging and errors.Is.
type PageError struct {
	Message string
	Err     error
}

func (e *PageError) Error() string {
	return e.Message
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// pageError keeps the backend's own message when it sent one.
func pageError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &PageError{Message: service.Message(err, fallback), Err: err}
}

// ConfirmFunc asks the user a yes/no question before a destructive action.
type ConfirmFunc func(prompt string) bool

// Confirmed is a ConfirmFunc for callers that collected the answer already,
// such as a submitted confirmation form.
func Confirmed(answer bool) ConfirmFunc {
	return func(string) bool { return answer }
}

type PageOptions struct {
	UI      *config.UIConfig
	Confirm ConfirmFunc
	Logger  *zap.Logger
}

func (o PageOptions) ui() *config.UIConfig {
	if o.UI == nil {
		return &config.UIConfig{PageSize: listing.DefaultPageSize, SearchDebounce: listing.DefaultDebounce}
	}
	return o.UI
}

func (o PageOptions) confirm(format string) func(int) bool {
	return func(n int) bool {
		if o.Confirm == nil {
			return false
		}
		return o.Confirm(fmt.Sprintf(format, n))
	}
}

// PageRequest restores a list from request parameters.
type PageRequest struct {
	Search   string
	SortBy   string
	Category string
	Page     int
	// Ref is the server reference for Page, if the client followed one.
	Ref string
}

func (r PageRequest) query() listing.Query {
	return listing.Query{
		Search:   r.Search,
		SortBy:   r.SortBy,
		Category: r.Category,
		Page:     r.Page,
		PageURL:  r.Ref,
	}
}
