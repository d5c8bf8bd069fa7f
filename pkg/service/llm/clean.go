package llm

import "strings"

// CleanGeneratedCode strips a surrounding markdown code fence from generated text.
// Both a language-tagged fence (```php) and a bare fence are recognized. Text that
// does not start with a fence is returned trimmed and otherwise unchanged.
func CleanGeneratedCode(raw string) string {
	cleaned := strings.TrimSpace(raw)
	for strings.HasPrefix(cleaned, "```") {
		next := stripFence(cleaned)
		if next == cleaned {
			break
		}
		cleaned = next
	}
	return cleaned
}

func stripFence(s string) string {
	// Drop the opening fence line including its optional language tag.
	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if isLanguageTag(tag) {
			body = body[nl+1:]
		}
	} else if isLanguageTag(strings.TrimSpace(body)) {
		body = ""
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '+' || r == '_') {
			return false
		}
	}
	return true
}
