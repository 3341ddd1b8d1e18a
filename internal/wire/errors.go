package wire

import "errors"

// Decode errors, named per spec.md §4.1/§4.3. These are sentinel values so
// callers can errors.Is against them; the server core logs at ERROR and
// drops the offending frame rather than tearing down the connection
// (spec.md §7 "Protocol decode").
var (
	// ErrTruncatedRecord is returned when reading a value would run past
	// the end of the supplied buffer.
	ErrTruncatedRecord = errors.New("wire: truncated record")

	// ErrUnknownTag is returned when a byte does not match any of the 36
	// defined wire tags.
	ErrUnknownTag = errors.New("wire: unknown tag")

	// ErrDuplicateKey is returned when decoding a frame body whose
	// records repeat a key.
	ErrDuplicateKey = errors.New("wire: duplicate key")

	// ErrLengthMismatch is returned when a frame's declared total_length
	// is below the header size or exceeds the bytes actually available.
	// A record that runs past the end of the declared body is reported as
	// ErrTruncatedRecord instead.
	ErrLengthMismatch = errors.New("wire: length mismatch")
)
