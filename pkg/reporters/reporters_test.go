package reporters

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPreloadAndFind(t *testing.T) {
	db, err := Preload()
	if err != nil {
		t.Fatalf("Preload failed: %v", err)
	}

	cases := []struct {
		name         string
		abbreviation string
		wantCount    int
		wantName     string
	}{
		{name: "canonical", abbreviation: "F.2d", wantCount: 1, wantName: "Federal Reporter, Second Series"},
		{name: "case_insensitive", abbreviation: "f.2d", wantCount: 1, wantName: "Federal Reporter, Second Series"},
		{name: "variant_spelling", abbreviation: "F. 2d", wantCount: 1, wantName: "Federal Reporter, Second Series"},
		{name: "spaced_reporter", abbreviation: "Cal. 3d", wantCount: 1, wantName: "California Reports, Third Series"},
		{name: "ambiguous", abbreviation: "Mart.", wantCount: 2},
		{name: "unknown", abbreviation: "Xyz.", wantCount: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			editions := db.Find(tc.abbreviation)
			if len(editions) != tc.wantCount {
				t.Fatalf("Find(%q) returned %d editions, want %d", tc.abbreviation, len(editions), tc.wantCount)
			}
			if tc.wantName != "" && editions[0].Name != tc.wantName {
				t.Errorf("edition name = %q, want %q", editions[0].Name, tc.wantName)
			}
		})
	}
}

func TestCachedAfterPreload(t *testing.T) {
	if _, err := Preload(); err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	db, ok := Cached()
	if !ok || db == nil {
		t.Fatal("Cached returned no database after Preload")
	}
	if db.Count() == 0 {
		t.Error("cached database is empty")
	}
}

func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte("reporters: {}\n")); err == nil {
		t.Fatal("expected error for empty reporter data")
	}
	if _, err := Parse([]byte("not: [valid")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

const customReporterYAML = `reporters:
  "Neb. App.":
    - name: Nebraska Appellate Reports
      jurisdiction: US-NE
      cite_type: state
      variants: ["Neb.App."]
`

func TestRegistryLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nebraska.yaml")
	if err := os.WriteFile(path, []byte(customReporterYAML), 0644); err != nil {
		t.Fatal(err)
	}

	registry := NewRegistry()
	if err := registry.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	editions := registry.Find("neb. app.")
	if len(editions) != 1 || editions[0].Name != "Nebraska Appellate Reports" {
		t.Errorf("Find returned %+v", editions)
	}
	if editions := registry.Find("Neb.App."); len(editions) != 1 {
		t.Errorf("variant lookup returned %+v", editions)
	}
}

func TestRegistryLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(customReporterYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewRegistryWithDirectory failed: %v", err)
	}
	if registry.CustomCount() != 2 { // canonical + one variant
		t.Errorf("CustomCount = %d, want 2", registry.CustomCount())
	}
}

func TestRegistryMissingDirectoryIsEmpty(t *testing.T) {
	registry := NewRegistry()
	if err := registry.LoadDirectory(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Fatalf("missing directory should not error: %v", err)
	}
	if registry.CustomCount() != 0 {
		t.Errorf("CustomCount = %d, want 0", registry.CustomCount())
	}
}

func TestRegistryReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte(customReporterYAML), 0644); err != nil {
		t.Fatal(err)
	}

	registry, err := NewRegistryWithDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := registry.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if registry.CustomCount() != 0 {
		t.Errorf("CustomCount after reload = %d, want 0", registry.CustomCount())
	}
}

func TestRegistryFallsBackToBuiltin(t *testing.T) {
	if _, err := Preload(); err != nil {
		t.Fatal(err)
	}
	registry := NewRegistry()
	if editions := registry.Find("U.S."); len(editions) != 1 {
		t.Errorf("builtin fallback returned %+v", editions)
	}
}
