// Package models defines the domain types for datagen.
package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Template is a content template a generated document is stamped from.
type Template struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Blueprint describes the archive to generate: one year/department directory
// per combination, populated from Texts.
//
// Authors is accepted for compatibility with existing blueprints but is not
// used by generation; every document is attributed to DefaultAuthor.
type Blueprint struct {
	Years       []int      `json:"years" yaml:"years"`
	Departments []string   `json:"departments" yaml:"departments"`
	Authors     []string   `json:"authors" yaml:"authors"`
	Texts       []Template `json:"texts" yaml:"texts"`
}

// Validate checks that every top-level field was present in the source document.
// Empty lists are accepted.
func (b *Blueprint) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Years, validation.NotNil),
		validation.Field(&b.Departments, validation.NotNil),
		validation.Field(&b.Authors, validation.NotNil),
		validation.Field(&b.Texts, validation.NotNil),
	)
}
