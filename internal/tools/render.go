package tools

import (
	"encoding/json"
	"fmt"
)

// FormatJSON pretty-prints a handler result.
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}

// Collection reshapes a Graph collection body ({"value": [...], optional
// "@odata.nextLink"}) for callers. The next-page link is surfaced but
// never followed.
func Collection(body map[string]any) map[string]any {
	out := map[string]any{"value": body["value"]}
	if next, ok := body["@odata.nextLink"]; ok {
		out["nextLink"] = next
	}
	return out
}
