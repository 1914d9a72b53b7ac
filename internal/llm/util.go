// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock strips what models wrap around a JSON payload: markdown code
// fences, a conversational preamble, and trailing commentary. Text that holds
// no balanced JSON object or array is returned trimmed but otherwise unchanged.
func CleanJSONBlock(text string) string {
	text = stripCodeFence(strings.TrimSpace(text))

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	candidate := text[start:]
	var extracted string
	if candidate[0] == '{' {
		extracted = extractJSONObject(candidate)
	} else {
		extracted = extractJSONArray(candidate)
	}
	if extracted == "" {
		return text
	}
	return extracted
}

func stripCodeFence(text string) string {
	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// extractJSONObject returns the balanced {...} value at the start of text, or "".
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced [...] value at the start of text, or "".
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans from an opening delimiter to its matching close,
// skipping delimiters that appear inside string literals.
func extractBalanced(text string, open, closing byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
