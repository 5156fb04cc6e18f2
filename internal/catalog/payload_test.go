package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParsePayloadBareArray(t *testing.T) {
	doc := []byte(`[{"id":"s-1","title":"Keynote","track":"General","date":"2025-01-20","startTime":"09:00","endTime":"10:00"}]`)

	pl, err := parsePayload(doc)
	if err != nil {
		t.Fatalf("parsePayload returned error: %v", err)
	}
	if pl.shape != shapeArray {
		t.Errorf("expected array shape, got %v", pl.shape)
	}
	if pl.version != "" {
		t.Errorf("bare array must carry no version, got %q", pl.version)
	}
	if len(pl.records) != 1 || pl.records[0].ID != "s-1" {
		t.Errorf("unexpected records: %+v", pl.records)
	}
}

func TestParsePayloadEnvelope(t *testing.T) {
	doc := []byte(`{"version":"2.0","lastUpdated":"2025-01-19T12:00:00Z","sessions":[{"id":"s-1","title":"Keynote","track":"General","date":"2025-01-20","startTime":"09:00","endTime":"10:00"}]}`)

	pl, err := parsePayload(doc)
	if err != nil {
		t.Fatalf("parsePayload returned error: %v", err)
	}
	if pl.shape != shapeEnvelope {
		t.Errorf("expected envelope shape, got %v", pl.shape)
	}
	if pl.version != "2.0" || pl.lastUpdated != "2025-01-19T12:00:00Z" {
		t.Errorf("unexpected envelope metadata: %q %q", pl.version, pl.lastUpdated)
	}
}

func TestParsePayloadRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"envelope without version", `{"sessions":[]}`},
		{"envelope without sessions", `{"version":"1.0"}`},
		{"scalar", `42`},
		{"malformed json", `[{"id":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parsePayload([]byte(tc.doc)); !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestNormalizeRecordsAssignsSequentialIDs(t *testing.T) {
	records := []rawSession{
		{Title: "First", Track: "General", Date: "2025-01-20", StartTime: "09:00", EndTime: "10:00"},
		{ID: "custom", Title: "Second", Track: "General", Date: "2025-01-20", StartTime: "10:00", EndTime: "11:00"},
	}

	sessions, err := normalizeRecords(records, time.Now())
	if err != nil {
		t.Fatalf("normalizeRecords returned error: %v", err)
	}
	if sessions[0].ID != "session-001" {
		t.Errorf("expected generated ID session-001, got %q", sessions[0].ID)
	}
	if sessions[1].ID != "custom" {
		t.Errorf("expected provided ID to survive, got %q", sessions[1].ID)
	}
}

func TestNormalizeRecordsCollectsAllProblems(t *testing.T) {
	records := []rawSession{
		{ID: "s-1", Track: "General", Date: "2025-01-20", StartTime: "09:00", EndTime: "10:00"},
		{ID: "s-2", Title: "Broken clock", Track: "General", Date: "2025-01-20", StartTime: "9am", EndTime: "10:00"},
		{ID: "s-3", Title: "Inverted", Track: "General", Date: "2025-01-20", StartTime: "11:00", EndTime: "10:00"},
	}

	_, err := normalizeRecords(records, time.Now())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, fragment := range []string{"s-1: missing title", "s-2: invalid start time", "s-3: start must be before end"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected error to mention %q, got %q", fragment, err.Error())
		}
	}
}

func TestNormalizeRecordsRejectsEmptySet(t *testing.T) {
	if _, err := normalizeRecords(nil, time.Now()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty record set, got %v", err)
	}
}
