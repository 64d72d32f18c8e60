// Package jsonfile reads the regulation corpus from a JSON array on disk,
// the default corpus source.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/kirillkom/roadsign-assistant/internal/core/domain"
)

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

// record mirrors the corpus file layout. Older corpus exports used "data"
// for the descriptive text, newer ones use "description"; both are read.
// Clause values appear both as strings and bare numbers.
type record struct {
	Problem     string       `json:"problem"`
	Category    string       `json:"category"`
	SignType    string       `json:"type"`
	Code        string       `json:"code"`
	Clause      flexibleText `json:"clause"`
	Description string       `json:"description"`
	Data        string       `json:"data"`
}

func (s *Source) Load(_ context.Context) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file %s: %w", s.path, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", s.path, err)
	}

	out := make([]domain.RawRecord, 0, len(records))
	for _, rec := range records {
		text := rec.Description
		if text == "" {
			text = rec.Data
		}
		out = append(out, domain.RawRecord{
			Problem:  rec.Problem,
			Category: rec.Category,
			SignType: rec.SignType,
			Code:     rec.Code,
			Clause:   string(rec.Clause),
			Text:     text,
		})
	}
	return out, nil
}

type flexibleText string

func (f *flexibleText) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleText(n.String())
	return nil
}
