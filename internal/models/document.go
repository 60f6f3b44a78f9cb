package models

import (
	"fmt"
	"strings"
	"time"
)

// Header labels, in the order they appear in a generated document.
const (
	LabelName      = "Name"
	LabelAuthor    = "Autor"
	LabelCreated   = "Erstellungsdatum"
	LabelReference = "Aktenzeichen"
	LabelTechnique = "Digitalisierungstechnik"
	LabelDigitized = "Digitalisierungsdatum"
)

const (
	// DefaultAuthor is stamped into every document regardless of Blueprint.Authors.
	DefaultAuthor = "Ayn Rand"
	// DigitizedYear is the constant digitization date of every document.
	DigitizedYear = 2012
	// ReferenceLength is the number of characters in an Aktenzeichen.
	ReferenceLength = 9
	// Separator ends the metadata header.
	Separator = "--------------------------"
	// FileExt is the extension of every generated document.
	FileExt = ".txt"
)

// Technique is how a document was digitized.
type Technique string

const (
	TechniqueManual  Technique = "manuell"
	TechniqueDigital Technique = "digital"
)

// Date is a day.month.year triple as written in the header. It is not
// normalised; day 31 of February would be kept as is.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (d Date) String() string {
	return fmt.Sprintf("%d.%d.%d", d.Day, d.Month, d.Year)
}

// Document is a generated archive file: metadata header plus copied body.
type Document struct {
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Created   Date      `json:"created"`
	Reference string    `json:"reference"`
	Technique Technique `json:"technique"`
	Digitized int       `json:"digitized"`
	Body      string    `json:"body,omitempty"`
}

// FileName returns the name the document is stored under.
func (d *Document) FileName() string {
	return strings.ToLower(d.Title) + FileExt
}

// Render serialises the document to its on-disk form.
func (d *Document) Render() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", LabelName, d.Title)
	fmt.Fprintf(&b, "%s: %s\n", LabelAuthor, d.Author)
	fmt.Fprintf(&b, "%s: %s\n", LabelCreated, d.Created)
	fmt.Fprintf(&b, "%s: %s\n", LabelReference, d.Reference)
	fmt.Fprintf(&b, "%s: %s\n", LabelTechnique, d.Technique)
	fmt.Fprintf(&b, "%s: %d\n", LabelDigitized, d.Digitized)
	b.WriteString(Separator + "\n")
	b.WriteString(d.Body)
	return []byte(b.String())
}

// DocumentMetadata is a lightweight representation returned by list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
