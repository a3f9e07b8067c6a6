// Package neterr defines the error kinds produced by the network configuration
// and routing layer, the code location captured where an error is detected, and
// the sinks those errors are reported to.
package neterr

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
)

// DomainPreface prefixes the domain of every code location in this module.
const DomainPreface = "com.doublenode.blankNetwork."

// Kind classifies a network configuration failure.
type Kind string

const (
	KindInvalidParameter Kind = "invalidParameter"
	KindNotFound         Kind = "notFound"
	KindInvalidURL       Kind = "invalidURL"
)

var (
	// ErrInvalidParameter matches errors raised for empty or malformed arguments.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNotFound matches errors raised when a code has no stored endpoint.
	ErrNotFound = errors.New("endpoint not found")
	// ErrInvalidURL matches errors raised when a URL cannot be composed or parsed.
	ErrInvalidURL = errors.New("invalid url")
)

// CodeLocation tags an error with where it was detected.
type CodeLocation struct {
	Domain   string `json:"domain"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Caller captures the location skip frames above the caller of Caller.
func Caller(skip int) CodeLocation {
	loc := CodeLocation{Domain: DomainPreface}
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return loc
	}
	loc.File = file
	loc.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		loc.Function = fn.Name()
		if idx := strings.LastIndex(loc.Function, "/"); idx >= 0 {
			loc.Function = loc.Function[idx+1:]
		}
	}
	return loc
}

func (l CodeLocation) String() string {
	short := l.File
	if idx := strings.LastIndex(short, "/"); idx >= 0 {
		short = short[idx+1:]
	}
	return fmt.Sprintf("%s%s,%d,%s", l.Domain, short, l.Line, l.Function)
}

// Error is the value-returned failure of a config or router operation.
type Error struct {
	Kind      Kind
	Parameter string
	Location  CodeLocation
	Err       error

	reported atomic.Bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Location.Domain)
	b.WriteString(string(e.Kind))
	if e.Parameter != "" {
		fmt.Fprintf(&b, " (%s)", e.Parameter)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidParameter:
		return e.Kind == KindInvalidParameter
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidURL:
		return e.Kind == KindInvalidURL
	}
	return false
}

// Reported reports whether the error has already been handed to a sink.
func (e *Error) Reported() bool { return e.reported.Load() }

// InvalidParameter returns an error for an unusable argument named param.
func InvalidParameter(param string) *Error {
	return &Error{Kind: KindInvalidParameter, Parameter: param, Location: Caller(1)}
}

// NotFound returns an error for a code with no stored endpoint.
func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Parameter: code, Location: Caller(1)}
}

// InvalidURL returns an error for raw failing to form a usable URL.
func InvalidURL(raw string, cause error) *Error {
	return &Error{Kind: KindInvalidURL, Parameter: raw, Location: Caller(1), Err: cause}
}

// Wrap classifies err as kind, tagging it with the caller's location.
func Wrap(kind Kind, param string, err error) *Error {
	return &Error{Kind: kind, Parameter: param, Location: Caller(1), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Kind, true
	}
	return "", false
}
