package llm

import "strings"

// CleanJSONResponse strips markdown code-fence wrappers from model output so
// the remainder can be unmarshalled as JSON. Backends in JSON mode usually
// return bare JSON, but fenced output still shows up often enough that every
// structured caller must go through this first.
func CleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (``` or ```json).
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}

	return strings.TrimSpace(s)
}
