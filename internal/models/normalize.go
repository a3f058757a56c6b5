package models

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Placeholder is shown wherever a free-text field is blank.
const Placeholder = "N/A"

// NoSkillsSentinel marks an application where no skill tag was selected.
const NoSkillsSentinel = "None selected"

// NormalizeRadius coerces a service radius to a non-negative integer.
// Anything unparseable becomes 0.
func NormalizeRadius(v any) int { return NonNegativeInt(v) }

// NonNegativeInt parses strings as base-10 integers and truncates real
// numbers, clamping failures and negatives to 0.
func NonNegativeInt(v any) int {
	var n int
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		n = i
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		n = int(x)
	default:
		i, err := cast.ToIntE(v)
		if err != nil {
			return 0
		}
		n = i
	}
	if n < 0 {
		return 0
	}
	return n
}

func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// JoinSkills stores selected tags as one comma-joined string.
func JoinSkills(tags []string) string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || t == NoSkillsSentinel || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return NoSkillsSentinel
	}
	return strings.Join(out, ", ")
}

// SplitSkills reverses JoinSkills. Tags are matched against the known
// options first because some of them contain commas.
func SplitSkills(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == NoSkillsSentinel {
		return []string{}
	}

	var out []string
	rest := s
	for rest != "" {
		rest = strings.TrimLeft(rest, ", ")
		if rest == "" {
			break
		}
		matched := false
		for _, opt := range SkillOptions {
			if strings.HasPrefix(rest, opt) {
				out = append(out, opt)
				rest = rest[len(opt):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		tag, tail, _ := strings.Cut(rest, ",")
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
		rest = tail
	}
	return out
}
