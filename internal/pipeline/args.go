package pipeline

import (
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// Args are the caller-supplied parameters of one check, usually decoded
// from a JSON object.
type Args map[string]any

func (a Args) record() domain.Record { return domain.Record(a) }

// Has reports whether key was supplied with a non-empty value.
func (a Args) Has(key string) bool {
	switch v := a[key].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	return true
}

// String returns the string at key, or def.
func (a Args) String(key, def string) string {
	if s := a.record().String(key); s != "" {
		return s
	}
	return def
}

// Float returns the number at key, or def.
func (a Args) Float(key string, def float64) float64 {
	return a.record().FloatOr(key, def)
}

// Bool returns the flag at key; absent means false.
func (a Args) Bool(key string) bool {
	return a.record().Bool(key)
}

// BoolOr returns the flag at key, or def when it was not supplied.
func (a Args) BoolOr(key string, def bool) bool {
	if _, ok := a[key]; !ok {
		return def
	}
	return a.Bool(key)
}

// Strings returns the list at key. A comma-separated string is split.
// Absent or empty values yield def.
func (a Args) Strings(key string, def []string) []string {
	var out []string
	if s, ok := a[key].(string); ok {
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	} else {
		for _, v := range a.record().Strings(key) {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Map returns the object at key.
func (a Args) Map(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}
