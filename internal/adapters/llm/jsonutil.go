package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Completion text rarely arrives as clean JSON: models wrap payloads in
// prose, markdown code fences, or both. ExtractJSON strips any fencing and
// returns the first balanced {...} or [...] span found in the text.
func ExtractJSON(content string) (string, error) {
	content = stripCodeFences(content)

	start := -1
	for i, ch := range content {
		if ch == '{' || ch == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return "", fmt.Errorf("%w: no JSON object or array in response", ErrMalformedPayload)
	}

	span, ok := balancedSpan(content[start:])
	if !ok {
		return "", fmt.Errorf("%w: unbalanced JSON in response", ErrMalformedPayload)
	}

	return span, nil
}

// DecodeInto extracts the first JSON payload from content and unmarshals it
// into v. Any failure wraps ErrMalformedPayload.
func DecodeInto(content string, v any) error {
	span, err := ExtractJSON(content)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return nil
}

// stripCodeFences removes markdown code fence lines (``` or ```json) so the
// balanced-span scan only sees payload text.
func stripCodeFences(content string) string {
	if !strings.Contains(content, "```") {
		return content
	}

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// balancedSpan returns the prefix of s forming one balanced bracket span.
// s must start with '{' or '['. String literals and escapes are respected so
// braces inside values do not confuse the count.
func balancedSpan(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{' || ch == '[':
			depth++
		case ch == '}' || ch == ']':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}
