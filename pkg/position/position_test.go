package position

import "testing"

func TestIdentityTable(t *testing.T) {
	table := Identity()

	for _, offset := range []int{0, 1, 17, 4096} {
		if got := table.ToOriginal(offset); got != offset {
			t.Errorf("ToOriginal(%d) = %d, want identity", offset, got)
		}
		if got := table.ToClean(offset); got != offset {
			t.Errorf("ToClean(%d) = %d, want identity", offset, got)
		}
	}
}

func TestTableLookup(t *testing.T) {
	// Cleaned text dropped three characters before offset 5.
	table := NewTable(map[int]int{
		0: 0,
		1: 1,
		5: 8,
		6: 9,
	})

	cases := []struct {
		name  string
		clean int
		orig  int
	}{
		{name: "start_maps_to_start", clean: 0, orig: 0},
		{name: "shifted_offset", clean: 5, orig: 8},
		{name: "adjacent_shifted_offset", clean: 6, orig: 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := table.ToOriginal(tc.clean); got != tc.orig {
				t.Errorf("ToOriginal(%d) = %d, want %d", tc.clean, got, tc.orig)
			}
			if got := table.ToClean(tc.orig); got != tc.clean {
				t.Errorf("ToClean(%d) = %d, want %d", tc.orig, got, tc.clean)
			}
		})
	}
}

func TestTableMissFallsBack(t *testing.T) {
	table := NewTable(map[int]int{0: 0, 5: 8})

	// Offset 3 was never recorded; the lookup falls back to the input.
	if got := table.ToOriginal(3); got != 3 {
		t.Errorf("ToOriginal(3) = %d, want untranslated 3", got)
	}
	if got := table.ToClean(100); got != 100 {
		t.Errorf("ToClean(100) = %d, want untranslated 100", got)
	}
}

func TestTableInverseCollision(t *testing.T) {
	// Two clean offsets claiming the same original offset: lowest clean wins.
	table := NewTable(map[int]int{2: 7, 4: 7})

	if got := table.ToClean(7); got != 2 {
		t.Errorf("ToClean(7) = %d, want 2", got)
	}
}

func TestNilTableIsIdentity(t *testing.T) {
	var table *Table
	if got := table.ToOriginal(12); got != 12 {
		t.Errorf("nil table ToOriginal(12) = %d, want 12", got)
	}
	if table.Len() != 0 {
		t.Errorf("nil table Len() = %d, want 0", table.Len())
	}
}
