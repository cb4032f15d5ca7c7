package usecases

import (
	"errors"
	"fmt"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// Rejected intents. None of them mutates state.
var (
	ErrEmptyQuestion  = errors.New("question is empty")
	ErrQueryInFlight  = errors.New("a question is already being answered")
	ErrUploadInFlight = errors.New("an upload is already in progress")
	ErrNoSources      = errors.New("message has no sources to toggle")
)

// FailureCause classifies why a collaborator call failed.
type FailureCause int

const (
	CauseUnreachable FailureCause = iota
	CauseStatus
	CauseMalformed
)

func (c FailureCause) String() string {
	switch c {
	case CauseUnreachable:
		return "unreachable"
	case CauseStatus:
		return "status"
	case CauseMalformed:
		return "malformed"
	}
	return fmt.Sprintf("FailureCause(%d)", int(c))
}

// UploadFailure is a failed ingestion call.
type UploadFailure struct {
	Cause FailureCause
	Err   error
}

func (f *UploadFailure) Error() string { return f.Err.Error() }
func (f *UploadFailure) Unwrap() error { return f.Err }

// QueryFailure is a failed query call.
type QueryFailure struct {
	Cause FailureCause
	Err   error
}

func (f *QueryFailure) Error() string { return f.Err.Error() }
func (f *QueryFailure) Unwrap() error { return f.Err }

func classify(err error) FailureCause {
	var statusErr *ports.StatusError
	switch {
	case errors.As(err, &statusErr):
		return CauseStatus
	case errors.Is(err, ports.ErrMalformedResponse):
		return CauseMalformed
	}
	return CauseUnreachable
}
