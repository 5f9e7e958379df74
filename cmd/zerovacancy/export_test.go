package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/zerovacancy/zerovacancy/internal/fixtures"
	"github.com/zerovacancy/zerovacancy/internal/storage/marketplace"
)

func TestSnapshot_LoadsBackAsFixtures(t *testing.T) {
	store := marketplace.NewMemoryStore(fixtures.Default())

	set, err := snapshot(context.Background(), store)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	data, err := yaml.Marshal(set)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := fixtures.Load(path)
	if err != nil {
		t.Fatalf("exported snapshot does not load: %v", err)
	}
	if len(loaded.Projects) != 3 || len(loaded.Applications) != 3 {
		t.Errorf("unexpected snapshot sizes: %d projects, %d applications",
			len(loaded.Projects), len(loaded.Applications))
	}
}

func TestFormatCents(t *testing.T) {
	tests := map[int]string{
		0:      "$0.00",
		75000:  "$750.00",
		123456: "$1234.56",
	}
	for cents, want := range tests {
		if got := formatCents(cents); got != want {
			t.Errorf("formatCents(%d) = %s, want %s", cents, got, want)
		}
	}
}
