package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a record.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadLink indicates a link pointed outside the buffer or at a misaligned record.
	ErrBadLink = errors.New("format: bad record link")
)
