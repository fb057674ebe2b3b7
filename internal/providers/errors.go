package providers

import (
	"errors"
	"net/url"
	"strings"
)

type ErrorType string

const (
	ErrorRateLimit ErrorType = "rate_limit"
	ErrorFatal     ErrorType = "fatal"
)

// ClassifyError decides whether a provider error is worth retrying.
// Rate-limit and quota exhaustion clear up on their own; everything else
// (bad credentials, malformed requests, server faults) will not.
//
// Matching is by lowered substring, so fixed wording in provider error
// strings must not contain the needles incidentally ("generate" contains
// "rate").
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "429"),
		strings.Contains(e, "rate"),
		strings.Contains(e, "quota"),
		strings.Contains(e, "resource_exhausted"):
		return ErrorRateLimit
	default:
		return ErrorFatal
	}
}

// transportCause unwraps a failed round trip to the error under url.Error,
// keeping the request URL out of the text ClassifyError sees; the Gemini
// endpoint path ":generateContent" would otherwise match "rate".
func transportCause(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
