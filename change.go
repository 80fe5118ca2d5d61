package indexedredis

import (
	"fmt"
	"slices"
	"strings"
)

// Change describes one field's transition between two states of a record.
// Old is the value the record held before, New the value it holds now.
type Change struct {
	Old Value
	New Value
}

func (chg Change) String() string {
	return fmt.Sprintf("%v => %v", chg.Old, chg.New)
}

// diffValues compares two value maps of the same model field by field and
// returns the changed subset. Returns nil when nothing differs.
func diffValues(m *Model, base, cur map[string]Value) map[string]Change {
	var changes map[string]Change
	for _, f := range m.fields {
		old, now := base[f.name], cur[f.name]
		if old.Equal(now) {
			continue
		}
		if changes == nil {
			changes = make(map[string]Change)
		}
		changes[f.name] = Change{Old: old, New: now}
	}
	return changes
}

// changedFieldNames renders the keys of a change set as a sorted
// comma-separated list, for log lines.
func changedFieldNames(changes map[string]Change) string {
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ",")
}
