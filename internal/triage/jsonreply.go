package triage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSONReply parses a model reply into v, tolerating markdown code
// fences around the JSON body.
func decodeJSONReply(reply string, v any) error {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("parsing model reply: %w", err)
	}
	return nil
}
