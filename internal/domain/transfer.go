package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExportVersion is written into every export envelope
const ExportVersion = "1.0"

// ExportEnvelope is a full, unfiltered snapshot of the store
type ExportEnvelope struct {
	Version      string        `json:"version"`
	ExportedAt   time.Time     `json:"exportedAt"`
	Bookmarks    []Bookmark    `json:"bookmarks"`
	Categories   []Category    `json:"categories"`
	Tags         []Tag         `json:"tags"`
	BookmarkTags []BookmarkTag `json:"bookmark_tags"`
}

// ImportRecord is one bookmark as it appears in an import payload.
// It tolerates the shapes written by older exports: numeric booleans,
// string ids and the inverted is_private flag.
type ImportRecord struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	CategoryID  *FlexInt  `json:"category_id"`
	IsPublic    *FlexBool `json:"is_public"`
	IsPrivate   *FlexBool `json:"is_private"`
}

// Public resolves the record's visibility. is_public wins over is_private.
func (r ImportRecord) Public() bool {
	if r.IsPublic != nil {
		return bool(*r.IsPublic)
	}
	if r.IsPrivate != nil {
		return !bool(*r.IsPrivate)
	}
	return false
}

// Category returns the referenced category id, if any
func (r ImportRecord) Category() *int64 {
	if r.CategoryID == nil || *r.CategoryID <= 0 {
		return nil
	}
	id := int64(*r.CategoryID)
	return &id
}

// ImportFailure records why a single import record was rejected
type ImportFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Imported int             `json:"imported"`
	Errors   int             `json:"errors"`
	Failures []ImportFailure `json:"-"`
}

// Fail records a rejected record
func (r *ImportResult) Fail(index int, reason string) {
	r.Errors++
	r.Failures = append(r.Failures, ImportFailure{Index: index, Reason: reason})
}

// DecodeImportPayload accepts either a bare list of records or an object
// with a bookmarks list. Elements are returned undecoded so that one badly
// typed record can be rejected on its own.
func DecodeImportPayload(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	var records []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("invalid bookmark list: %w", err)
		}
	case '{':
		var envelope struct {
			Bookmarks json.RawMessage `json:"bookmarks"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("invalid envelope: %w", err)
		}
		raw := bytes.TrimSpace(envelope.Bookmarks)
		if len(raw) == 0 || raw[0] != '[' {
			return nil, fmt.Errorf("bookmarks must be a list")
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("invalid bookmark list: %w", err)
		}
	default:
		return nil, fmt.Errorf("payload must be a list or an object with bookmarks")
	}

	return records, nil
}

// DecodeImportRecord decodes a single element of an import list
func DecodeImportRecord(raw json.RawMessage) (ImportRecord, error) {
	var rec ImportRecord
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return rec, fmt.Errorf("record must be an object")
	}
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return ImportRecord{}, fmt.Errorf("invalid record: %w", err)
	}
	return rec, nil
}

// FlexInt decodes a JSON number, a numeric string or an empty string (zero)
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", string(data))
	}
	*f = FlexInt(n)
	return nil
}

// FlexBool decodes true/false, 0/1 and their string forms
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid boolean %s", string(data))
	}
	return nil
}
