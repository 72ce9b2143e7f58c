package errs

import (
	"regexp"
	"strings"
)

// vendorPatterns match identifying third-party terms in outbound messages.
// The system must never reveal which upstream vendor failed; operators get
// the raw text through the logger instead.
var vendorPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)replicate(\.com)?`), "the analysis service"},
	{regexp.MustCompile(`(?i)open\s?ai|gpt-?[0-9o][a-z0-9.-]*|chatgpt`), "the analysis service"},
	{regexp.MustCompile(`(?i)anthropic|claude[a-z0-9.-]*`), "the analysis service"},
	{regexp.MustCompile(`(?i)gemini|llama[a-z0-9.-]*|mistral`), "the analysis service"},
	{regexp.MustCompile(`(?i)pagespeed(\s+insights)?`), "the measurement service"},
	{regexp.MustCompile(`(?i)lighthouse`), "the measurement service"},
	{regexp.MustCompile(`(?i)googleapis\.com[^\s"']*`), "the measurement service"},
	{regexp.MustCompile(`(?i)\bgoogle\b`), "the measurement service"},
}

// tokenPattern catches credential-looking substrings that occasionally leak
// into upstream error bodies.
var tokenPattern = regexp.MustCompile(`(?i)(key|token|bearer)[=:\s]+[A-Za-z0-9_-]{8,}`)

// Sanitize rewrites a message so it is safe to return to the caller: vendor
// names become generic service language and credential-like fragments are
// blanked. Idempotent.
func Sanitize(msg string) string {
	out := msg
	for _, p := range vendorPatterns {
		out = p.re.ReplaceAllString(out, p.replacement)
	}
	out = tokenPattern.ReplaceAllString(out, "$1=[redacted]")
	// Collapse doubled generic phrases left behind by adjacent matches.
	out = strings.ReplaceAll(out, "the analysis service the analysis service", "the analysis service")
	out = strings.ReplaceAll(out, "the measurement service the measurement service", "the measurement service")
	return out
}

// SanitizeError classifies and sanitizes in one step, producing the object
// returned across the API boundary.
func SanitizeError(err error) Classification {
	c := Classify(err)
	c.UserMessage = Sanitize(c.UserMessage)
	return c
}
