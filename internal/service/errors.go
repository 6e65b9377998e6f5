package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures for callers and HTTP status mapping
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindDownload        ErrorKind = "download"
	KindAssetProcessing ErrorKind = "asset_processing"
	KindGeneration      ErrorKind = "generation"
	KindPersistence     ErrorKind = "persistence"
	KindTimeout         ErrorKind = "timeout"
	KindInternal        ErrorKind = "internal"
)

// MsgVideoProcessingFailed is reported when the remote asset ends in FAILED.
const MsgVideoProcessingFailed = "Video processing failed."

var (
	ErrQueueItemNotFound = errors.New("queue item not found")
	ErrInvalidTransition = errors.New("invalid queue status transition")
	ErrCreatorNotFound   = errors.New("creator not found")
)

// PipelineError is a classified failure. Message is shown to users as is.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newPipelineError(kind ErrorKind, err error, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// ValidationError reports bad input.
func ValidationError(msg string) error {
	return &PipelineError{Kind: KindValidation, Message: msg}
}

// KindOf returns the kind of the first PipelineError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
