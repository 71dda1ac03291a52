// Package position tracks offsets across two parallel representations of a
// document: the cleaned text used for matching and the original text returned
// to callers. A Table is built once during cleaning and shared read-only.
package position

// Table maps offsets between cleaned and original text.
// An empty Table is the identity mapping: every lookup misses and falls back
// to the untranslated offset. Tables are immutable after construction and
// safe for concurrent readers.
type Table struct {
	cleanToOrig map[int]int
	origToClean map[int]int
}

// Identity returns a table under which every offset maps to itself.
func Identity() *Table {
	return &Table{}
}

// NewTable builds a table from a clean-offset → original-offset mapping.
// The inverse table is derived automatically; when two clean offsets map to
// the same original offset, the first recorded wins.
func NewTable(cleanToOrig map[int]int) *Table {
	table := &Table{
		cleanToOrig: make(map[int]int, len(cleanToOrig)),
		origToClean: make(map[int]int, len(cleanToOrig)),
	}
	for clean, orig := range cleanToOrig {
		table.cleanToOrig[clean] = orig
	}
	for clean, orig := range table.cleanToOrig {
		if existing, ok := table.origToClean[orig]; !ok || clean < existing {
			table.origToClean[orig] = clean
		}
	}
	return table
}

// ToOriginal translates a cleaned-text offset to an original-text offset.
// A lookup miss returns the input unchanged, never an error.
func (t *Table) ToOriginal(cleanOffset int) int {
	if t == nil || t.cleanToOrig == nil {
		return cleanOffset
	}
	if orig, ok := t.cleanToOrig[cleanOffset]; ok {
		return orig
	}
	return cleanOffset
}

// ToClean translates an original-text offset to a cleaned-text offset.
// A lookup miss returns the input unchanged.
func (t *Table) ToClean(originalOffset int) int {
	if t == nil || t.origToClean == nil {
		return originalOffset
	}
	if clean, ok := t.origToClean[originalOffset]; ok {
		return clean
	}
	return originalOffset
}

// Len returns the number of recorded clean→original entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cleanToOrig)
}
