package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed means the generator answered but not with the expected object.
var ErrMalformed = errors.New("malformed summary response")

var fencePattern = regexp.MustCompile("```(?:json|JSON)?")

type Result struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Parse extracts {summary, tags} from generator output. It tolerates code
// fences and prose around the object; the summary must be non-empty and at
// least one non-blank tag must remain.
func Parse(text string) (Result, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))

	res, err := decode(cleaned)
	if err != nil {
		obj, ok := firstObject(cleaned)
		if !ok {
			return Result{}, fmt.Errorf("%w: no JSON object found", ErrMalformed)
		}
		if res, err = decode(obj); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	res.Summary = strings.TrimSpace(res.Summary)
	if res.Summary == "" {
		return Result{}, fmt.Errorf("%w: summary is empty", ErrMalformed)
	}

	tags := make([]string, 0, len(res.Tags))
	for _, t := range res.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return Result{}, fmt.Errorf("%w: tags are empty", ErrMalformed)
	}
	res.Tags = tags
	return res, nil
}

func decode(s string) (Result, error) {
	var raw struct {
		Summary *string          `json:"summary"`
		Tags    *json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Result{}, err
	}
	if raw.Summary == nil {
		return Result{}, errors.New("summary is missing")
	}
	if raw.Tags == nil {
		return Result{}, errors.New("tags are missing")
	}
	var tags []string
	if err := json.Unmarshal(*raw.Tags, &tags); err != nil {
		return Result{}, fmt.Errorf("tags must be an array of strings: %w", err)
	}
	return Result{Summary: *raw.Summary, Tags: tags}, nil
}

// firstObject returns the first balanced top-level {...} in s. Braces inside
// string literals, including escaped quotes, are ignored.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
