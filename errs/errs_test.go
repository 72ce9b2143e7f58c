package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTypedErrors(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      Code
		wantTransient bool
	}{
		{"configuration", &ConfigurationError{Reason: "missing credential"}, CodeAuthError, false},
		{"unparsable", &UnparsableResponseError{Detail: "exhausted"}, CodeParseError, false},
		{"job timeout", &RemoteJobError{State: JobTimedOut}, CodeTimeout, true},
		{"job failed", &RemoteJobError{State: JobFailed}, CodeServerError, true},
		{"job canceled", &RemoteJobError{State: JobCanceled}, CodeServerError, true},
		{"parse", &ParseError{URL: "https://x.test", Err: errors.New("bad html")}, CodeParseError, false},
		{"fetch 404", &FetchError{URL: "https://x.test", StatusCode: 404}, CodeNotFound, false},
		{"fetch 429", &FetchError{URL: "https://x.test", StatusCode: 429}, CodeRateLimit, true},
		{"fetch 503", &FetchError{URL: "https://x.test", StatusCode: 503}, CodeServerError, true},
		{"fetch 403", &FetchError{URL: "https://x.test", StatusCode: 403}, CodeValidation, false},
		{"fetch transport", &FetchError{URL: "https://x.test", Err: errors.New("dial tcp: no route")}, CodeNetworkError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			assert.Equal(t, tt.wantCode, c.Code)
			assert.Equal(t, tt.wantTransient, c.IsTransient)
			assert.NotEmpty(t, c.UserMessage)
		})
	}
}

func TestClassifyWrappedTypedError(t *testing.T) {
	err := fmt.Errorf("calling upstream: %w", &ConfigurationError{Reason: "no key"})
	assert.Equal(t, CodeAuthError, Classify(err).Code)
}

func TestClassifyByMessage(t *testing.T) {
	tests := []struct {
		msg           string
		wantCode      Code
		wantTransient bool
	}{
		{"context deadline exceeded", CodeTimeout, true},
		{"request timed out after 30s", CodeTimeout, true},
		{"rate limit exceeded", CodeRateLimit, true},
		{"401 unauthorized", CodeAuthError, false},
		{"invalid api key", CodeAuthError, false},
		{"resource not found", CodeNotFound, false},
		{"502 bad gateway", CodeServerError, true},
		{"service unavailable", CodeServerError, true},
		{"connection refused", CodeNetworkError, true},
		{"unexpected EOF", CodeNetworkError, true},
		{"cannot unmarshal string into int", CodeParseError, false},
		{"validation failed for field url", CodeValidation, false},
		{"something entirely else", CodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			c := Classify(errors.New(tt.msg))
			assert.Equal(t, tt.wantCode, c.Code)
			assert.Equal(t, tt.wantTransient, c.IsTransient)
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := errors.New("connection reset by peer")
	fatal := &ConfigurationError{Reason: "no key"}

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.True(t, ShouldRetry(transient, 1, 3))
	assert.False(t, ShouldRetry(transient, 2, 3), "attempt budget exhausted")
	assert.False(t, ShouldRetry(fatal, 0, 3), "non-transient never retries")
}

func TestSanitizeRedactsVendorTerms(t *testing.T) {
	tests := []struct {
		in       string
		mustMiss []string
	}{
		{"Replicate returned 500", []string{"Replicate", "replicate"}},
		{"OpenAI gpt-4o quota exceeded", []string{"OpenAI", "gpt-4o"}},
		{"claude-3-sonnet is overloaded", []string{"claude"}},
		{"PageSpeed Insights quota reached", []string{"PageSpeed"}},
		{"Lighthouse audit failed", []string{"Lighthouse"}},
		{"call to www.googleapis.com/pagespeedonline failed", []string{"googleapis.com"}},
	}

	for _, tt := range tests {
		out := Sanitize(tt.in)
		for _, term := range tt.mustMiss {
			assert.NotContains(t, out, term, "input %q", tt.in)
		}
	}
}

func TestSanitizeRedactsCredentials(t *testing.T) {
	out := Sanitize("request failed: key=AIzaSyB1234567890abcdef status 403")
	assert.NotContains(t, out, "AIzaSyB1234567890abcdef")
	assert.Contains(t, out, "[redacted]")
}

func TestSanitizeLeavesPlainMessagesAlone(t *testing.T) {
	msg := "The page could not be reached. Please check the URL"
	assert.Equal(t, msg, Sanitize(msg))
}

func TestSanitizeErrorCombines(t *testing.T) {
	c := SanitizeError(errors.New("Replicate: rate limit exceeded"))
	assert.Equal(t, CodeRateLimit, c.Code)
	assert.NotContains(t, c.UserMessage, "Replicate")
}
