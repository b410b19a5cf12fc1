package infra

import (
	"strings"
	"testing"

	"personastudio/internal/sqlinline"
)

func TestExtractMarker(t *testing.T) {
	marker, trimmed, err := extractMarker(sqlinline.QSelectPersonaByID)
	if err != nil {
		t.Fatalf("extractMarker: %v", err)
	}
	if marker != "95448366-e3ec-41a1-97a6-c63594f0d695" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.Contains(trimmed, "--sql") {
		t.Fatalf("marker line leaked into statement:\n%s", trimmed)
	}
	if !strings.Contains(trimmed, "from personas") {
		t.Fatalf("statement body missing:\n%s", trimmed)
	}
}

func TestExtractMarkerRejectsUnmarkedSQL(t *testing.T) {
	for _, query := range []string{
		"select 1;",
		"--sql not-a-uuid\nselect 1;",
		"-- comment\nselect 1;",
	} {
		if _, _, err := extractMarker(query); err == nil {
			t.Fatalf("extractMarker accepted %q", query)
		}
	}
}

func TestAllInlineStatementsCarryMarkers(t *testing.T) {
	statements := map[string]string{
		"select persona":           sqlinline.QSelectPersonaByID,
		"list personas":            sqlinline.QListPersonas,
		"list personas by owner":   sqlinline.QListPersonasByOwner,
		"upsert persona":           sqlinline.QUpsertPersona,
		"select integration token": sqlinline.QSelectIntegrationToken,
		"upsert integration token": sqlinline.QUpsertIntegrationToken,
	}
	seen := make(map[string]string, len(statements))
	for name, query := range statements {
		marker, _, err := extractMarker(query)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if prev, dup := seen[marker]; dup {
			t.Fatalf("marker %s reused by %s and %s", marker, prev, name)
		}
		seen[marker] = name
	}
}
