package client

import (
	"errors"
	"fmt"
)

// Class groups errors by the layer that produced them.
type Class string

const (
	// ClassURL covers failures building request URLs.
	ClassURL Class = "url"

	// ClassTransport covers network failures and unexpected HTTP responses.
	ClassTransport Class = "transport"

	// ClassAPI covers data the API returned that the reader cannot use,
	// server-reported API errors and invalid caller arguments.
	ClassAPI Class = "api"

	// ClassDecode covers bodies that do not match the target type.
	ClassDecode Class = "decode"
)

// Class sentinels. errors.Is(err, ErrClassAPI) reports whether err belongs to
// the API class, whatever its variant.
var (
	ErrClassURL       = errors.New("url error")
	ErrClassTransport = errors.New("transport error")
	ErrClassAPI       = errors.New("api error")
	ErrClassDecode    = errors.New("decode error")
)

// Variant sentinels.
var (
	// URL class.
	ErrBadURL           = errors.New("the url is malformed")
	ErrNonHTTPURL       = errors.New("the url does not use the http or https scheme")
	ErrBadURLComponents = errors.New("the url could not be built from its components")

	// Transport class.
	ErrRequestFailed   = errors.New("the request did not complete successfully")
	ErrNotHTTPResponse = errors.New("the response is not an http response")
	ErrNetwork         = errors.New("the network request failed")

	// API class.
	ErrBadHeader   = errors.New("total pages in header not a valid integer")
	ErrAPI         = errors.New("the api reported an error")
	ErrBadArgument = errors.New("invalid argument")

	// Decode class.
	ErrNotDecodable = errors.New("the response body could not be decoded")
)

var variantClass = map[error]Class{
	ErrBadURL:           ClassURL,
	ErrNonHTTPURL:       ClassURL,
	ErrBadURLComponents: ClassURL,
	ErrRequestFailed:    ClassTransport,
	ErrNotHTTPResponse:  ClassTransport,
	ErrNetwork:          ClassTransport,
	ErrBadHeader:        ClassAPI,
	ErrAPI:              ClassAPI,
	ErrBadArgument:      ClassAPI,
	ErrNotDecodable:     ClassDecode,
}

var classSentinel = map[Class]error{
	ClassURL:       ErrClassURL,
	ClassTransport: ErrClassTransport,
	ClassAPI:       ErrClassAPI,
	ClassDecode:    ErrClassDecode,
}

// Error is the error type returned by every reader operation.
type Error struct {
	Class      Class
	StatusCode int    // 0 when no response was received
	URL        string // request URL, if known
	Message    string // details, e.g. the message of a WordPress error document
	Err        error  // variant sentinel
	Cause      error  // underlying error, if any
}

// NewError builds an Error for a variant sentinel. The class is derived from
// the variant.
func NewError(variant error, url string, cause error) *Error {
	return &Error{
		Class: variantClass[variant],
		URL:   url,
		Err:   variant,
		Cause: cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("wordpress %s error", e.Class)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.URL != "" {
		msg += " [" + e.URL + "]"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the variant sentinel, the class sentinel and the cause to
// errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if s, ok := classSentinel[e.Class]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ClassOf classifies err. Errors that did not originate in the reader are
// reported as transport errors, the reader's catch-all for failures outside
// its own logic. A nil error has no class.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Class != "" {
		return e.Class
	}
	return ClassTransport
}

// IsBadArgument reports whether err was caused by an invalid caller argument.
func IsBadArgument(err error) bool {
	return errors.Is(err, ErrBadArgument)
}
