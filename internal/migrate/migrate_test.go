package migrate

import (
	"strings"
	"testing"
)

func TestEveryUpHasDown(t *testing.T) {
	names, err := Versions()
	if err != nil {
		t.Fatalf("Versions err: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no embedded migrations")
	}

	seen := make(map[string]int)
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			seen[strings.TrimSuffix(name, ".up.sql")]++
		case strings.HasSuffix(name, ".down.sql"):
			seen[strings.TrimSuffix(name, ".down.sql")]--
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
	for version, balance := range seen {
		if balance != 0 {
			t.Fatalf("migration %s lacks its up or down file", version)
		}
	}
}
