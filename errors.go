package imgpreset

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

// Failure kinds.
const (
	DecodeFailure      Kind = "decode"
	ConfigurationError Kind = "config"
	AssetMissing       Kind = "asset"
	EncodeFailure      Kind = "encode"
)

// Error is the structured error returned by the pipeline.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// IsKind reports whether err is a pipeline error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrNoDecoder     = errors.New("no decoder could read the file")
	ErrNoPreview     = errors.New("no embedded JPEG preview found")
)
