// Package jsonrepair recovers a JSON object from free-form text produced by
// a best-effort JSON emitter. Repairs are attempted in increasing order of
// aggressiveness so the least destructive fix that parses always wins.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopaudit/backend/errs"
)

var (
	fenceRe        = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	greedyObjRe    = regexp.MustCompile(`(?s)\{.*\}`)
	lazyObjRe      = regexp.MustCompile(`(?s)\{.*?\}`)
	doubleColonRe  = regexp.MustCompile(`"\s*::\s*`)
	trailCommaRe   = regexp.MustCompile(`,\s*([}\]])`)
	lineCommentRe  = regexp.MustCompile(`(?m)//[^\n]*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	multiCommaRe   = regexp.MustCompile(`,\s*,+`)
)

// repair transforms applied in order. Each one builds on the raw candidate,
// not on the previous repair's output, except the cumulative final pass.
var repairs = []func(string) string{
	func(s string) string { return s },
	func(s string) string { return doubleColonRe.ReplaceAllString(s, `": `) },
	func(s string) string { return trailCommaRe.ReplaceAllString(s, "$1") },
	stripTrailingCommas,
	func(s string) string { return blockCommentRe.ReplaceAllString(lineCommentRe.ReplaceAllString(s, ""), "") },
	func(s string) string { return multiCommaRe.ReplaceAllString(s, ",") },
	repairAll,
}

// Parse extracts and parses a single JSON object from raw text. It fails
// with *errs.UnparsableResponseError only after every strategy is exhausted.
func Parse(raw string) (map[string]interface{}, error) {
	candidate := extractCandidate(raw)
	if candidate == "" {
		return nil, &errs.UnparsableResponseError{Detail: "no JSON object found in response"}
	}

	for _, fix := range repairs {
		repaired := fix(candidate)
		var out map[string]interface{}
		if err := json.Unmarshal([]byte(repaired), &out); err == nil {
			return out, nil
		}
	}
	return nil, &errs.UnparsableResponseError{Detail: "all repair strategies failed"}
}

// extractCandidate locates the most plausible object span: strip markdown
// fences, then prefer a balanced-brace span found by depth counting, then
// fall back to greedy and non-greedy regex matches.
func extractCandidate(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if span := balancedSpan(text); span != "" {
		return span
	}
	if m := greedyObjRe.FindString(text); m != "" {
		return m
	}
	return lazyObjRe.FindString(text)
}

// balancedSpan returns the outermost {...} span found by brace-depth
// counting, string-literal aware. Empty when no balanced span exists.
func balancedSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// stripTrailingCommas runs the trailing-comma repair until fixpoint, for
// inputs with nested trailing commas the single-pass regex cannot reach.
func stripTrailingCommas(s string) string {
	for {
		next := trailCommaRe.ReplaceAllString(s, "$1")
		if next == s {
			return next
		}
		s = next
	}
}

// repairAll applies every textual repair cumulatively, the last resort
// before giving up.
func repairAll(s string) string {
	s = doubleColonRe.ReplaceAllString(s, `": `)
	s = lineCommentRe.ReplaceAllString(s, "")
	s = blockCommentRe.ReplaceAllString(s, "")
	s = multiCommaRe.ReplaceAllString(s, ",")
	return stripTrailingCommas(s)
}
