package upstream

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to upstream errors.
const (
	TextCodeFetchFailure = "FETCH_FAILURE"
	TextCodeNotFound     = "NOT_FOUND"
	TextCodeDecode       = "DECODE_FAILURE"
)

// fetchFailure builds the error returned for a non-success response or a
// transport error. status is 0 when no response was received.
func fetchFailure(url string, status int, source error) *goerrors.Error {
	meta := map[string]any{"url": url, "status": status}

	if status == http.StatusNotFound {
		return goerrors.New("resource not found: "+url, goerrors.CategoryNotFound).
			WithCode(status).
			WithTextCode(TextCodeNotFound).
			WithMetadata(meta)
	}

	if source != nil {
		return goerrors.Wrap(source, goerrors.CategoryExternal, "fetch failed: "+url).
			WithCode(status).
			WithTextCode(TextCodeFetchFailure).
			WithMetadata(meta)
	}

	return goerrors.New("fetch failed with status "+http.StatusText(status)+": "+url, goerrors.CategoryExternal).
		WithCode(status).
		WithTextCode(TextCodeFetchFailure).
		WithMetadata(meta)
}

// IsNotFound reports whether err means the upstream has no such resource.
func IsNotFound(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryNotFound)
}

// IsFetchFailure reports whether err came from a failed upstream call,
// including not found responses.
func IsFetchFailure(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryExternal) || IsNotFound(err)
}

// Status returns the HTTP status carried by an upstream error, or 0.
func Status(err error) int {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		return e.Code
	}
	return 0
}

// URL returns the request URL carried by an upstream error, or "".
func URL(err error) string {
	var e *goerrors.Error
	if goerrors.As(err, &e) {
		if u, ok := e.Metadata["url"].(string); ok {
			return u
		}
	}
	return ""
}
