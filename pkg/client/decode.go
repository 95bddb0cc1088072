package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Decoder decodes a response body into v.
type Decoder interface {
	Decode(data []byte, v any) error
}

// JSONDecoder decodes JSON bodies. Dates are handled by the target types
// (see package wpdate).
type JSONDecoder struct {
	// Strict rejects fields the target type does not declare.
	Strict bool
}

// Decode implements Decoder. Failures are decode errors carrying the
// structural cause.
func (d JSONDecoder) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.Strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return &Error{
			Class:   ClassDecode,
			Err:     ErrNotDecodable,
			Message: fmt.Sprintf("target %T", v),
			Cause:   err,
		}
	}
	return nil
}

// apiErrorDocument is the body WordPress sends with error responses.
type apiErrorDocument struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckStatus returns nil for a 200 response. A WordPress error document
// becomes an API error; any other status is a failed request.
func CheckStatus(resp *Response, rawURL string) error {
	if resp == nil {
		wpErrorsTotal.WithLabelValues(string(ClassTransport)).Inc()
		return NewError(ErrNotHTTPResponse, rawURL, nil)
	}
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var doc apiErrorDocument
	if err := json.Unmarshal(resp.Body, &doc); err == nil && doc.Code != "" {
		wpErrorsTotal.WithLabelValues(string(ClassAPI)).Inc()
		return &Error{
			Class:      ClassAPI,
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Message:    doc.Code + ": " + doc.Message,
			Err:        ErrAPI,
		}
	}

	wpErrorsTotal.WithLabelValues(string(ClassTransport)).Inc()
	return &Error{
		Class:      ClassTransport,
		StatusCode: resp.StatusCode,
		URL:        rawURL,
		Err:        ErrRequestFailed,
	}
}

// FetchJSON GETs rawURL, requires a 200 response and decodes the body as T.
func FetchJSON[T any](ctx context.Context, t Transport, dec Decoder, rawURL string) (T, error) {
	var out T

	resp, err := t.Do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return out, err
	}
	if err := CheckStatus(resp, rawURL); err != nil {
		return out, err
	}

	if err := dec.Decode(resp.Body, &out); err != nil {
		wpErrorsTotal.WithLabelValues(string(ClassDecode)).Inc()
		var e *Error
		if errors.As(err, &e) {
			if e.URL == "" {
				e.URL = rawURL
			}
			return out, e
		}
		return out, &Error{Class: ClassDecode, URL: rawURL, Err: ErrNotDecodable, Cause: err}
	}
	return out, nil
}
