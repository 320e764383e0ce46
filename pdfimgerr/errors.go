// Package pdfimgerr defines the typed error kinds surfaced by the image
// decoding pipeline, wrapping github.com/pkg/errors so call sites keep a
// stack trace the way the rest of this module does.
package pdfimgerr

import "github.com/pkg/errors"

// Kind classifies why a decode operation failed.
type Kind int

const (
	// KindUnknown is the zero value; never returned by this module.
	KindUnknown Kind = iota

	// KindUnsupportedFilter: a filter name not implemented, or a
	// native-container filter appearing before the final position.
	KindUnsupportedFilter

	// KindUnsupportedColorSpace: ICC inference with component count not in
	// {1,3,4}, or a family a builder cannot render.
	KindUnsupportedColorSpace

	// KindUnsupportedBitDepth: BitsPerComponent not in {1,2,4,8}.
	KindUnsupportedBitDepth

	// KindUnsupportedByRenderer: the chosen builder rejects the
	// container/color-space pair.
	KindUnsupportedByRenderer

	// KindUnsupportedDecodeArray: decode array is not the trivial
	// pure-negation pattern and cannot be applied in the native-container
	// path.
	KindUnsupportedDecodeArray

	// KindUnsupportedMaskColorSpace: color-key mask on a non-Indexed
	// source.
	KindUnsupportedMaskColorSpace

	// KindTruncatedImage: sample payload shorter than width*height*components.
	KindTruncatedImage

	// KindMalformedContentStream: unrecoverable parse error in the page
	// stream.
	KindMalformedContentStream
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFilter:
		return "UnsupportedFilter"
	case KindUnsupportedColorSpace:
		return "UnsupportedColorSpace"
	case KindUnsupportedBitDepth:
		return "UnsupportedBitDepth"
	case KindUnsupportedByRenderer:
		return "UnsupportedByRenderer"
	case KindUnsupportedDecodeArray:
		return "UnsupportedDecodeArray"
	case KindUnsupportedMaskColorSpace:
		return "UnsupportedMaskColorSpace"
	case KindTruncatedImage:
		return "TruncatedImage"
	case KindMalformedContentStream:
		return "MalformedContentStream"
	default:
		return "Unknown"
	}
}

// Error is a typed, wrapped error. Err carries the wrapped cause; for errors
// constructed by New it is an error built from the message, so it is never
// nil for values returned by New or Wrap.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a Kind-tagged error from a message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Wrap annotates cause with a Kind and a formatted message, preserving the
// pkg/errors stack trace of cause if it has one.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.Wrapf(cause, format, args...)}
}

// As reports whether err (or anything it wraps) is a *Error, and if so
// returns its Kind.
func As(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindUnknown, false
}
