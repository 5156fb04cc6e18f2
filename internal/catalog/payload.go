package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

// payloadShape discriminates the two accepted catalog document shapes. The
// shape is resolved exactly once at parse time; downstream code branches on
// the tag and never re-inspects the raw document.
type payloadShape int

const (
	// shapeArray is the legacy shape: a bare JSON array of raw records.
	// It carries no version tag and is treated as always fresh.
	shapeArray payloadShape = iota
	// shapeEnvelope wraps the records with version metadata.
	shapeEnvelope
)

type payload struct {
	shape       payloadShape
	version     string
	lastUpdated string
	records     []rawSession
}

type rawSession struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Track       string       `json:"track"`
	Date        string       `json:"date"`
	StartTime   string       `json:"startTime"`
	EndTime     string       `json:"endTime"`
	TimeSlot    string       `json:"timeSlot"`
	Description *string      `json:"description"`
	Speakers    []rawSpeaker `json:"speakers"`
}

type rawSpeaker struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type envelope struct {
	Version     string       `json:"version"`
	LastUpdated string       `json:"lastUpdated"`
	Sessions    []rawSession `json:"sessions"`
}

// parsePayload decodes the document into the tagged union. Only a bare array
// of records or a version envelope is accepted.
func parsePayload(data []byte) (payload, error) {
	trimmed := bytes.TrimSpace(data)

	switch trimmed[0] {
	case '[':
		var records []rawSession
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return payload{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		return payload{shape: shapeArray, records: records}, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return payload{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if env.Version == "" || env.Sessions == nil {
			return payload{}, fmt.Errorf("%w: envelope requires version and sessions", ErrParse)
		}
		return payload{
			shape:       shapeEnvelope,
			version:     env.Version,
			lastUpdated: env.LastUpdated,
			records:     env.Sessions,
		}, nil
	default:
		return payload{}, fmt.Errorf("%w: document is neither an array nor an envelope", ErrParse)
	}
}

// normalizeRecords validates raw records and converts them into sessions.
// Records without an ID receive a zero-padded sequential one. Validation runs
// over the whole set before anything is returned so a partial import can
// never happen.
func normalizeRecords(records []rawSession, importedAt time.Time) ([]persistence.Session, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no session records", ErrValidation)
	}

	problems := make([]string, 0)
	sessions := make([]persistence.Session, 0, len(records))

	for index, record := range records {
		label := record.ID
		if label == "" {
			label = fmt.Sprintf("record %d", index+1)
		}

		if strings.TrimSpace(record.Title) == "" {
			problems = append(problems, label+": missing title")
		}
		if strings.TrimSpace(record.Track) == "" {
			problems = append(problems, label+": missing track")
		}
		if _, err := time.Parse("2006-01-02", record.Date); err != nil {
			problems = append(problems, label+": invalid date")
		}
		start, startErr := parseClock(record.StartTime)
		if startErr != nil {
			problems = append(problems, label+": invalid start time")
		}
		end, endErr := parseClock(record.EndTime)
		if endErr != nil {
			problems = append(problems, label+": invalid end time")
		}
		if startErr == nil && endErr == nil && start >= end {
			problems = append(problems, label+": start must be before end")
		}

		id := record.ID
		if id == "" {
			id = fmt.Sprintf("session-%03d", index+1)
		}

		speakers := make([]persistence.Speaker, 0, len(record.Speakers))
		for _, speaker := range record.Speakers {
			speakers = append(speakers, persistence.Speaker{Name: speaker.Name, Title: speaker.Title})
		}

		sessions = append(sessions, persistence.Session{
			ID:          id,
			Title:       strings.TrimSpace(record.Title),
			Track:       strings.TrimSpace(record.Track),
			Date:        record.Date,
			StartTime:   record.StartTime,
			EndTime:     record.EndTime,
			TimeSlot:    record.TimeSlot,
			Description: record.Description,
			Speakers:    speakers,
			ImportedAt:  importedAt,
		})
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return sessions, nil
}

func parseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}
