package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// SimpleJSONFormat is a minimal JSON format for importing subscriptions
// Example:
//
//	{
//	  "subscriptions": [
//	    {"name": "Netflix", "category": "Entertainment", "cost": 15.49,
//	     "frequency": "monthly", "next_date": "2025-01-15"}
//	  ]
//	}
//
// A bare array in the persisted format (nextDate, with ids) is accepted too, so a
// copy of the data file can be imported directly.
type SimpleJSONFormat struct {
	Subscriptions []SimpleJSONSubscription `json:"subscriptions"`
}

type SimpleJSONSubscription struct {
	Name      string      `json:"name"`
	Category  string      `json:"category"`
	Cost      json.Number `json:"cost"`
	Frequency string      `json:"frequency"`
	NextDate  string      `json:"next_date"`
	Notes     string      `json:"notes"`

	// persisted-format spelling
	NextDateCamel string `json:"nextDate"`
}

// ImportSimpleJSON reads a file in the simple JSON format
func ImportSimpleJSON(path string) ([]InputFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var entries []SimpleJSONSubscription
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	} else {
		var doc SimpleJSONFormat
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		entries = doc.Subscriptions
	}

	fields := make([]InputFields, 0, len(entries))
	for _, e := range entries {
		nextDate := e.NextDate
		if nextDate == "" {
			nextDate = e.NextDateCamel
		}
		fields = append(fields, InputFields{
			Name:      e.Name,
			Category:  e.Category,
			Cost:      e.Cost.String(),
			Frequency: e.Frequency,
			NextDate:  nextDate,
			Notes:     e.Notes,
		})
	}
	return fields, nil
}

func init() {
	RegisterImporter("simple-json", ImporterFunc(ImportSimpleJSON))
}
