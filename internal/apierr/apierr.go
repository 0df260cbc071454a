// Package apierr defines the closed set of error kinds the API can return.
// Each kind maps to a fixed HTTP status; translation to a response body
// happens once, at the server boundary.
package apierr

import "net/http"

type Kind int

const (
	// KindValidation covers request-shape violations: empty text, malformed
	// URL, missing upload.
	KindValidation Kind = iota
	// KindURLFetch covers timeouts, non-2xx statuses, and transport failures
	// while fetching remote content.
	KindURLFetch
	// KindInvalidFile covers uploads whose declared type is not image/*.
	KindInvalidFile
	// KindContentTooLarge covers uploads over the configured size cap.
	KindContentTooLarge
	// KindProvider covers any Mistral call failure, including replies that
	// are not valid JSON. Upstream detail categories are deliberately
	// collapsed into this one bucket.
	KindProvider
)

// Error carries an error kind and a client-facing detail message.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindURLFetch, KindInvalidFile:
		return http.StatusBadRequest
	case KindContentTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func Validation(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

func URLFetch(detail string) *Error {
	return &Error{Kind: KindURLFetch, Detail: "Failed to fetch URL content: " + detail}
}

func InvalidFile(detail string) *Error {
	return &Error{Kind: KindInvalidFile, Detail: detail}
}

func ContentTooLarge(detail string) *Error {
	return &Error{Kind: KindContentTooLarge, Detail: detail}
}

func Provider(detail string) *Error {
	return &Error{Kind: KindProvider, Detail: "Mistral AI analysis failed: " + detail}
}
