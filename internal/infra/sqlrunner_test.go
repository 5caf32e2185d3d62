package infra

import (
	"context"
	"strings"
	"testing"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 3f6a1c0e-9d42-4b7a-8c11-5e2f90d4a6b3\nselect 1;"
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker returned error: %v", err)
	}
	if marker != "3f6a1c0e-9d42-4b7a-8c11-5e2f90d4a6b3" {
		t.Fatalf("unexpected marker: %q", marker)
	}
	if strings.TrimSpace(trimmed) != "select 1;" {
		t.Fatalf("unexpected query body: %q", trimmed)
	}
}

func TestExtractMarkerRejectsMissingMarker(t *testing.T) {
	if _, _, err := extractMarker("select 1;"); err == nil {
		t.Fatal("expected an error for a marker-less query")
	}
}

func TestExtractMarkerRejectsUppercaseHex(t *testing.T) {
	if _, _, err := extractMarker("--sql 3F6A1C0E-9d42-4b7a-8c11-5e2f90d4a6b3\nselect 1;"); err == nil {
		t.Fatal("expected an error for an uppercase marker")
	}
}

func TestErrorRowPropagates(t *testing.T) {
	runner := &SQLRunner{}
	row := runner.QueryRow(context.Background(), "select 1;")
	if err := row.Scan(); err == nil {
		t.Fatal("expected the marker error to surface on Scan")
	}
}
