package domain

import "strings"

// Predicate tests one record.
type Predicate func(Record) bool

// Rung is one step of a severity ladder.
type Rung struct {
	Match Predicate
	Rank  int
	Class string
	Level string
}

// Ladder is an ordered severity vocabulary, most severe first.
type Ladder []Rung

// Classify returns the first rung whose predicate matches rec.
func (l Ladder) Classify(rec Record) (Rung, bool) {
	for _, r := range l {
		if r.Match(rec) {
			return r, true
		}
	}
	return Rung{}, false
}

// Worst returns the largest rank on the ladder, used for unmatched records.
func (l Ladder) Worst() int {
	worst := 0
	for _, r := range l {
		worst = max(worst, r.Rank)
	}
	return worst
}

func Always() Predicate { return func(Record) bool { return true } }

// Has matches records carrying a non-empty value at key.
func Has(key string) Predicate {
	return func(r Record) bool { return r.String(key) != "" }
}

// FloatAtLeast matches records whose numeric key is >= v.
func FloatAtLeast(key string, v float64) Predicate {
	return func(r Record) bool {
		f, ok := r.Float(key)
		return ok && f >= v
	}
}

// FloatAbove matches records whose numeric key is > v.
func FloatAbove(key string, v float64) Predicate {
	return func(r Record) bool {
		f, ok := r.Float(key)
		return ok && f > v
	}
}

// Equals matches key case-insensitively.
func Equals(key, v string) Predicate {
	return func(r Record) bool { return strings.EqualFold(r.String(key), v) }
}

// Contains matches a case-insensitive substring of key.
func Contains(key, sub string) Predicate {
	sub = strings.ToLower(sub)
	return func(r Record) bool { return strings.Contains(strings.ToLower(r.String(key)), sub) }
}

func All(ps ...Predicate) Predicate {
	return func(r Record) bool {
		for _, p := range ps {
			if !p(r) {
				return false
			}
		}
		return true
	}
}
