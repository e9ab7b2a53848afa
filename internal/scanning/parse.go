package scanning

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ParseError is returned when the model response cannot be read as a receipt.
type ParseError struct {
	Response string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// dateLayouts are accepted alternatives to ISO dates, rewritten to YYYY-MM-DD.
var dateLayouts = []string{
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006年1月2日",
}

// parseReceiptJSON parses the JSON response from the model
func parseReceiptJSON(text string) (*ReceiptData, error) {
	raw := text

	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, &ParseError{Response: raw, Err: errors.New("no JSON object found in response")}
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx < startIdx {
		return nil, &ParseError{Response: raw, Err: errors.New("invalid JSON object in response")}
	}

	text = text[startIdx : endIdx+1]

	var data ReceiptData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, &ParseError{Response: raw, Err: fmt.Errorf("unmarshaling json: %w", err)}
	}

	data.Date = normalizeDate(strings.TrimSpace(data.Date))
	data.Vendor = strings.TrimSpace(data.Vendor)
	data.Category = strings.TrimSpace(data.Category)
	data.Invoice = strings.TrimSpace(data.Invoice)
	for i, item := range data.Items {
		data.Items[i] = strings.TrimSpace(item)
	}

	return &data, nil
}

// normalizeDate rewrites known date layouts to YYYY-MM-DD.
// Anything else is returned untouched rather than guessed.
func normalizeDate(date string) string {
	if date == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", date); err == nil {
		return date
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, date); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return date
}
