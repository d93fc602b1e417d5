package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParsePlanData parses the raw LLM response text into PlanData.
// Models sometimes wrap the object in prose or emit commented JSON despite
// instructions, so parsing runs a repair pipeline: strip comments, direct
// parse, library repair, then a last-resort extraction of the substring
// between the first '{' and the last '}'.
func ParsePlanData(raw string) (*PlanData, error) {
	cleaned := stripJSONComments(raw)

	if data, err := unmarshalPlanData(cleaned); err == nil {
		return data, nil
	}

	if repaired, err := jsonrepair.JSONRepair(cleaned); err == nil {
		if data, err := unmarshalPlanData(repaired); err == nil {
			return data, nil
		}
	}

	if extracted, ok := extractJSONObject(cleaned); ok {
		if data, err := unmarshalPlanData(extracted); err == nil {
			return data, nil
		}
	}

	return nil, fmt.Errorf("unable to parse plan data from LLM response")
}

func unmarshalPlanData(s string) (*PlanData, error) {
	var data PlanData
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, err
	}
	if len(data.Days) == 0 {
		return nil, fmt.Errorf("parsed plan contains no days")
	}
	return &data, nil
}

// extractJSONObject returns the substring between the first '{' and the
// last '}' of s, if both exist in order.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// stripJSONComments removes //-style line comments and /* */ block
// comments from s, leaving string literal contents untouched.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			b.WriteByte(ch)
			if escaped {
				escaped = false
			} else if ch == '\\' {
				escaped = true
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			b.WriteByte(ch)
		case ch == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++ // skip the closing '/'
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
