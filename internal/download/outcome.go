package download

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMarker is returned when a stored outcome cannot be parsed.
var ErrInvalidMarker = errors.New("download: invalid outcome marker")

// Result is the kind of a fetch outcome.
type Result int

// Fetch results.
const (
	Downloaded Result = iota + 1
	Failed
	Skipped
)

// Error codes that are not HTTP statuses.
const (
	CodeTimeout    = "timeout"
	CodeConnection = "connection_error"
	CodeProtocol   = "protocol_error"
)

var resultNames = map[Result]string{
	Downloaded: "DOWNLOADED",
	Failed:     "ERROR",
	Skipped:    "EXISTS",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "Result(" + strconv.Itoa(int(r)) + ")"
}

// Outcome is the classified result of one fetch attempt.
type Outcome struct {
	Result Result
	Code   string
}

// Success returns the outcome of a completed download.
func Success() Outcome { return Outcome{Result: Downloaded} }

// Exists returns the outcome of a fetch skipped because the file was already there.
func Exists() Outcome { return Outcome{Result: Skipped} }

// Error returns a failed outcome with the given code.
func Error(code string) Outcome { return Outcome{Result: Failed, Code: code} }

// StatusError returns a failed outcome for an unexpected HTTP status.
func StatusError(status int) Outcome { return Error(strconv.Itoa(status)) }

// IsSuccess reports whether a file was actually fetched.
func (o Outcome) IsSuccess() bool {
	return o.Result == Downloaded
}

// IsFailure reports whether the fetch failed.
func (o Outcome) IsFailure() bool {
	return o.Result == Failed
}

// Retriable reports whether a failed attempt should be attempted again on a later run.
// Only 400, timeout and connection errors are transient; anything else is terminal.
func (o Outcome) Retriable() bool {
	if o.Result != Failed {
		return false
	}
	switch o.Code {
	case "400", CodeTimeout, CodeConnection:
		return true
	}
	return false
}

// NotFound reports whether the upstream has no tile for this address.
func (o Outcome) NotFound() bool {
	return o.Result == Failed && o.Code == "404"
}

// String serializes the outcome as stored in a marker: "ERROR" or "ERROR,<code>".
func (o Outcome) String() string {
	if o.Code == "" {
		return o.Result.String()
	}
	return o.Result.String() + "," + o.Code
}

// ParseOutcome parses the serialized form produced by String.
func ParseOutcome(s string) (Outcome, error) {
	name, code, _ := strings.Cut(strings.TrimSpace(s), ",")

	for r, n := range resultNames {
		if n == name {
			return Outcome{Result: r, Code: code}, nil
		}
	}

	return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidMarker, s)
}
