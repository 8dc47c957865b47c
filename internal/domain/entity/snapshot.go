package entity

import "strings"

const DefaultSnapshotMaxChars = 4000

// Snapshot is the bounded, whitespace-collapsed text the planner sees for one step.
type Snapshot string

// NewSnapshot collapses every whitespace run to a single space and truncates the
// result to maxChars characters. maxChars <= 0 selects DefaultSnapshotMaxChars.
func NewSnapshot(raw string, maxChars int) Snapshot {
	if maxChars <= 0 {
		maxChars = DefaultSnapshotMaxChars
	}

	text := strings.Join(strings.Fields(raw), " ")

	runes := []rune(text)
	if len(runes) > maxChars {
		text = string(runes[:maxChars])
	}
	return Snapshot(text)
}

func (s Snapshot) String() string {
	return string(s)
}

// Len reports the length in characters, not bytes.
func (s Snapshot) Len() int {
	return len([]rune(string(s)))
}
