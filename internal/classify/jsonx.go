package classify

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Lenient parsing of model output. Responses regularly arrive wrapped in
// code fences, with curly quotes, prose around the object, or trailing
// commas; this pipeline repairs all of those before giving up.

var (
	fenceOpenRe      = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceCloseRe     = regexp.MustCompile("\\s*```$")
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
	curlyQuoteMapper = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

func stripCodeFences(text string) string {
	text = fenceOpenRe.ReplaceAllString(strings.TrimSpace(text), "")
	text = fenceCloseRe.ReplaceAllString(strings.TrimSpace(text), "")
	return strings.TrimSpace(text)
}

func normalizeQuotes(text string) string {
	return curlyQuoteMapper.Replace(text)
}

// extractJSONBlock locates the first balanced {...} span in text, ignoring
// braces inside string literals. Returns "" when no balanced span exists.
func extractJSONBlock(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// TryParseJSON attempts to recover a JSON object from raw model output:
// direct parse, then a balanced {...} span inside the noise, then the same
// span with trailing commas stripped. Returns nil when nothing parses.
func TryParseJSON(text string) map[string]interface{} {
	text = stripCodeFences(normalizeQuotes(text))

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text), &data); err == nil {
		return data
	}

	block := extractJSONBlock(text)
	if block == "" {
		return nil
	}

	data = nil
	if err := json.Unmarshal([]byte(block), &data); err == nil {
		return data
	}

	cleaned := trailingCommaRe.ReplaceAllString(block, "$1")
	data = nil
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil {
		return data
	}
	return nil
}

// stringField pulls a string value out of a loosely-typed parsed object.
func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
