// Package parser reads generated archive documents back into their metadata and body.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/datagen/internal/models"
)

// ErrNoSeparator is returned when the header is not terminated by the dashed separator line.
var ErrNoSeparator = errors.New("parser: header separator not found")

var headerOrder = []string{
	models.LabelName,
	models.LabelAuthor,
	models.LabelCreated,
	models.LabelReference,
	models.LabelTechnique,
	models.LabelDigitized,
}

// Parse splits data into header fields and body. The header must contain
// every label in the order documents are generated with.
func Parse(data []byte) (*models.Document, error) {
	text := string(data)
	sep := models.Separator + "\n"

	idx := strings.Index(text, sep)
	if idx < 0 {
		return nil, ErrNoSeparator
	}
	header := strings.TrimSuffix(text[:idx], "\n")
	body := text[idx+len(sep):]

	lines := strings.Split(header, "\n")
	if len(lines) != len(headerOrder) {
		return nil, fmt.Errorf("parser: expected %d header lines, got %d", len(headerOrder), len(lines))
	}

	values := make(map[string]string, len(lines))
	for i, line := range lines {
		label, value, ok := strings.Cut(line, ": ")
		if !ok || label != headerOrder[i] {
			return nil, fmt.Errorf("parser: line %d: expected %q field, got %q", i+1, headerOrder[i], line)
		}
		values[label] = value
	}

	created, err := parseDate(values[models.LabelCreated])
	if err != nil {
		return nil, err
	}
	digitized, err := strconv.Atoi(values[models.LabelDigitized])
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", models.LabelDigitized, err)
	}
	tech := models.Technique(values[models.LabelTechnique])
	if tech != models.TechniqueManual && tech != models.TechniqueDigital {
		return nil, fmt.Errorf("parser: unknown technique %q", tech)
	}

	return &models.Document{
		Title:     values[models.LabelName],
		Author:    values[models.LabelAuthor],
		Created:   created,
		Reference: values[models.LabelReference],
		Technique: tech,
		Digitized: digitized,
		Body:      body,
	}, nil
}

// parseDate reads a D.M.Y date as written by Date.String.
func parseDate(s string) (models.Date, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return models.Date{}, fmt.Errorf("parser: malformed date %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return models.Date{}, fmt.Errorf("parser: malformed date %q: %w", s, err)
		}
		nums[i] = n
	}
	return models.Date{Day: nums[0], Month: nums[1], Year: nums[2]}, nil
}
