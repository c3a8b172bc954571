package completion

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

// The model is told to answer with a single JSON object but routinely wraps
// it in prose or markdown fences. ParseReply runs an ordered chain of
// strategies, each returning (result, ok); the first success wins.
var parseStrategies = []func(string) (chat.CompletionResult, bool){
	parseBalancedJSON,
	parseFieldRegex,
}

// ParseReply turns raw model output into a CompletionResult. It never
// fails: when every strategy misses, the raw text minus any stray braces is
// used verbatim as the response with readyForHandoff false.
func ParseReply(raw string) chat.CompletionResult {
	for _, strategy := range parseStrategies {
		if result, ok := strategy(raw); ok {
			return result
		}
	}
	stripped := strings.NewReplacer("{", "", "}", "").Replace(raw)
	return chat.CompletionResult{Response: strings.TrimSpace(stripped)}
}

// parseBalancedJSON extracts the first balanced {...} substring, tracking
// strings and escapes so braces inside response text don't end the scan, and
// unmarshals it.
func parseBalancedJSON(raw string) (chat.CompletionResult, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return chat.CompletionResult{}, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				var result chat.CompletionResult
				if err := json.Unmarshal([]byte(raw[start:i+1]), &result); err != nil {
					return chat.CompletionResult{}, false
				}
				if strings.TrimSpace(result.Response) == "" {
					return chat.CompletionResult{}, false
				}
				return result, true
			}
		}
	}
	return chat.CompletionResult{}, false
}

var (
	responsePattern = regexp.MustCompile(`"response"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	summaryPattern  = regexp.MustCompile(`"contextSummary"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	handoffPattern  = regexp.MustCompile(`"readyForHandoff"\s*:\s*(true|false)`)
)

// parseFieldRegex pulls individual fields out of text that looks like the
// expected JSON but doesn't parse as a whole, e.g. a truncated object.
func parseFieldRegex(raw string) (chat.CompletionResult, bool) {
	m := responsePattern.FindStringSubmatch(raw)
	if m == nil {
		return chat.CompletionResult{}, false
	}
	result := chat.CompletionResult{Response: unescapeJSON(m[1])}
	if sm := summaryPattern.FindStringSubmatch(raw); sm != nil {
		result.ContextSummary = unescapeJSON(sm[1])
	}
	if hm := handoffPattern.FindStringSubmatch(raw); hm != nil {
		result.ReadyForHandoff = hm[1] == "true"
	}
	return result, true
}

// unescapeJSON decodes a JSON string body captured without its quotes.
func unescapeJSON(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
