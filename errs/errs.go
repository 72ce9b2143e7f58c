package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code is the closed taxonomy every failure is mapped into before it crosses
// the system boundary.
type Code string

const (
	CodeTimeout      Code = "TIMEOUT"
	CodeNetworkError Code = "NETWORK_ERROR"
	CodeRateLimit    Code = "RATE_LIMIT"
	CodeAuthError    Code = "AUTH_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeServerError  Code = "SERVER_ERROR"
	CodeParseError   Code = "PARSE_ERROR"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnknown      Code = "UNKNOWN_ERROR"
)

// Classification is the sanitized view of a failure: a stable code, a
// user-safe message and whether a retry could plausibly succeed.
type Classification struct {
	Code        Code   `json:"code"`
	UserMessage string `json:"message"`
	IsTransient bool   `json:"-"`
}

// ConfigurationError signals a missing or malformed credential, or an
// unresolvable model identifier. Never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// FetchError signals that retrieving the target page failed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed for %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch failed for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError signals that a retrieved document could not be parsed.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Terminal states of the remote text-generation job protocol.
const (
	JobTimedOut = "timed_out"
	JobFailed   = "failed"
	JobCanceled = "canceled"
)

// RemoteJobError signals that a remote text-generation job ended in a
// non-success terminal state, or never reached one inside the polling window.
type RemoteJobError struct {
	State  string // JobTimedOut, JobFailed or JobCanceled
	Detail string
}

func (e *RemoteJobError) Error() string {
	if e.Detail == "" {
		return "remote job " + e.State
	}
	return "remote job " + e.State + ": " + e.Detail
}

// UnparsableResponseError signals that the JSON repair ladder was exhausted
// without recovering an object.
type UnparsableResponseError struct {
	Detail string
}

func (e *UnparsableResponseError) Error() string {
	return "unparsable response: " + e.Detail
}

// Classify maps an arbitrary failure onto the closed code set by inspecting
// its type and message. The message matching is deliberately substring-based:
// upstream services disagree about error shapes, their wording is the only
// stable signal.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Code: CodeUnknown, UserMessage: "An unknown error occurred"}
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return Classification{Code: CodeAuthError, UserMessage: "The analysis service is not configured correctly"}
	}
	var unparsable *UnparsableResponseError
	if errors.As(err, &unparsable) {
		return Classification{Code: CodeParseError, UserMessage: "The analysis service returned an unreadable result"}
	}
	var jobErr *RemoteJobError
	if errors.As(err, &jobErr) {
		switch jobErr.State {
		case JobTimedOut:
			return Classification{Code: CodeTimeout, UserMessage: "The analysis took too long. Please try again", IsTransient: true}
		default:
			return Classification{Code: CodeServerError, UserMessage: "The analysis service encountered a problem", IsTransient: true}
		}
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return Classification{Code: CodeParseError, UserMessage: "The page could not be read"}
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch {
		case fetchErr.StatusCode == 404:
			return Classification{Code: CodeNotFound, UserMessage: "The page could not be found"}
		case fetchErr.StatusCode == 429:
			return Classification{Code: CodeRateLimit, UserMessage: "Too many requests. Please wait a moment and try again", IsTransient: true}
		case fetchErr.StatusCode >= 500:
			return Classification{Code: CodeServerError, UserMessage: "The page's server had a problem. Please try again", IsTransient: true}
		case fetchErr.StatusCode >= 400:
			return Classification{Code: CodeValidation, UserMessage: "The page refused the request"}
		}
		return Classification{Code: CodeNetworkError, UserMessage: "The page could not be reached. Please check the URL", IsTransient: true}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return Classification{Code: CodeTimeout, UserMessage: "The request took too long. Please try again", IsTransient: true}
	case containsAny(msg, "rate limit", "too many requests", "429"):
		return Classification{Code: CodeRateLimit, UserMessage: "Too many requests. Please wait a moment and try again", IsTransient: true}
	case containsAny(msg, "unauthorized", "forbidden", "api key", "invalid key", "401", "403"):
		return Classification{Code: CodeAuthError, UserMessage: "The analysis service is not configured correctly"}
	case containsAny(msg, "not found", "404"):
		return Classification{Code: CodeNotFound, UserMessage: "The page could not be found"}
	case containsAny(msg, "502", "503", "504", "bad gateway", "service unavailable", "internal server"):
		return Classification{Code: CodeServerError, UserMessage: "An upstream service had a problem. Please try again", IsTransient: true}
	case containsAny(msg, "network", "connection", "no such host", "refused", "reset by peer", "eof"):
		return Classification{Code: CodeNetworkError, UserMessage: "A network problem interrupted the analysis. Please try again", IsTransient: true}
	case containsAny(msg, "parse", "unmarshal", "invalid json", "unexpected token"):
		return Classification{Code: CodeParseError, UserMessage: "A service returned an unreadable result"}
	case containsAny(msg, "validation", "invalid url", "invalid input"):
		return Classification{Code: CodeValidation, UserMessage: "The request was invalid. Please check the URL"}
	}
	return Classification{Code: CodeUnknown, UserMessage: "An unexpected error occurred. Please try again"}
}

// ShouldRetry reports whether a failure is worth another attempt: the
// failure must classify as transient and attempts must remain below the
// ceiling. attempt is zero-based.
func ShouldRetry(err error, attempt, maxAttempts int) bool {
	if attempt >= maxAttempts-1 {
		return false
	}
	return Classify(err).IsTransient
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
