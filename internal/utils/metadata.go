package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// pythonTitleRE matches 'title': 'value' inside python-literal serializations
// of the suggestedTexts sub-structure found in scraped listing metadata.
var pythonTitleRE = regexp.MustCompile(`'title':\s*'([^']+)'`)

// ExtractTitle pulls a display title out of listing metadata. The source data
// serializes a nested {"title": ..., "subtitle": ...} block under
// "suggestedTexts", sometimes as JSON and sometimes as a python literal, so
// the fallback chain is:
//  1. plain title-ish keys (title, Title, name, Name)
//  2. suggestedTexts parsed as JSON
//  3. suggestedTexts scanned with a python-literal regex
//  4. generic "Property <id>"
func ExtractTitle(meta map[string]interface{}, id string) string {
	for _, key := range []string{"title", "Title", "name", "Name"} {
		if t := MetaString(meta, key); t != "" {
			return t
		}
	}

	if raw := MetaString(meta, "suggestedTexts"); raw != "" {
		var nested map[string]interface{}
		if err := json.Unmarshal([]byte(normalizeQuotes(raw)), &nested); err == nil {
			if t, ok := nested["title"].(string); ok && strings.TrimSpace(t) != "" {
				return strings.TrimSpace(t)
			}
		}
		if m := pythonTitleRE.FindStringSubmatch(raw); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}

	return "Property " + id
}

// normalizeQuotes gives python-literal dicts a chance to parse as JSON.
// It only rewrites when the text has no double quotes at all, so real JSON
// with embedded apostrophes is never mangled.
func normalizeQuotes(s string) string {
	if strings.Contains(s, `"`) {
		return s
	}
	return strings.ReplaceAll(s, "'", `"`)
}

// MetaString coerces a metadata value to a trimmed string, "" when absent
func MetaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// JSON numbers decode as float64; print integers without a decimal
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%v", t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// MetaStringAny returns the first non-empty value among keys
func MetaStringAny(meta map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s := MetaString(meta, key); s != "" {
			return s
		}
	}
	return ""
}

// MetaStringOr returns MetaString or a fallback for prompt-facing fields,
// where unknown attributes must read "not specified" rather than vanish.
func MetaStringOr(meta map[string]interface{}, key, fallback string) string {
	if s := MetaString(meta, key); s != "" {
		return s
	}
	return fallback
}
