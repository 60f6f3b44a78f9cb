package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/datagen/internal/apperr"
	"github.com/starford/datagen/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path       string          `json:"path"`
	Year       int             `json:"year"`
	Department string          `json:"department"`
	Document   models.Document `json:"document"`
	Checksum   string          `json:"checksum"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Year       int
	Department string
	Technique  string
	Limit      int
	Offset     int
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Reference string `json:"reference"`
	Snippet   string `json:"snippet"`
}

// Stats summarises the catalogued archive.
type Stats struct {
	Documents   int            `json:"documents"`
	ByYear      map[int]int    `json:"by_year"`
	ByTechnique map[string]int `json:"by_technique"`
}

// Location splits an archive path of the form <year>/<department>/<file>
// into its year and department. Paths of any other shape yield zero values.
func Location(path string) (int, string) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 {
		return 0, ""
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, ""
	}
	return year, parts[1]
}

// NewRow builds a catalog row for doc stored at path.
func NewRow(path string, doc *models.Document, checksum string) DocumentRow {
	year, dept := Location(path)
	return DocumentRow{
		Path:       path,
		Year:       year,
		Department: dept,
		Document:   *doc,
		Checksum:   checksum,
		UpdatedAt:  time.Now().UTC(),
	}
}

// Upsert inserts or replaces a document row.
func (db *DB) Upsert(r DocumentRow) error {
	d := r.Document
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO documents (path, year, department, title, author,
			created_day, created_month, created_year, reference, technique,
			digitized, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			year          = excluded.year,
			department    = excluded.department,
			title         = excluded.title,
			author        = excluded.author,
			created_day   = excluded.created_day,
			created_month = excluded.created_month,
			created_year  = excluded.created_year,
			reference     = excluded.reference,
			technique     = excluded.technique,
			digitized     = excluded.digitized,
			checksum      = excluded.checksum,
			body          = excluded.body,
			updated_at    = excluded.updated_at
	`, r.Path, r.Year, r.Department, d.Title, d.Author,
		d.Created.Day, d.Created.Month, d.Created.Year, d.Reference, string(d.Technique),
		d.Digitized, r.Checksum, d.Body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", r.Path, err)
	}
	if err := ftsUpsert(tx, r.Path, d.Title, d.Reference, d.Body); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a document row. Deleting an unknown path is not an error.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog: delete %s: %w", path, err)
	}
	ftsDelete(tx, path)
	return tx.Commit()
}

const rowColumns = `path, year, department, title, author, created_day, created_month,
	created_year, reference, technique, digitized, checksum, body, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*DocumentRow, error) {
	var (
		r    DocumentRow
		tech string
	)
	d := &r.Document
	err := s.Scan(&r.Path, &r.Year, &r.Department, &d.Title, &d.Author,
		&d.Created.Day, &d.Created.Month, &d.Created.Year, &d.Reference, &tech,
		&d.Digitized, &r.Checksum, &d.Body, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Technique = models.Technique(tech)
	return &r, nil
}

// Get returns the row stored for path, or apperr.ErrNotFound.
func (db *DB) Get(path string) (*DocumentRow, error) {
	row := db.conn.QueryRow(`SELECT `+rowColumns+` FROM documents WHERE path = ?`, path)
	r, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", path, err)
	}
	return r, nil
}

// List returns rows matching f ordered by path, plus the total match count.
// Bodies are omitted.
func (db *DB) List(f ListFilter) ([]DocumentRow, int, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var (
		conds []string
		args  []any
	)
	if f.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, f.Year)
	}
	if f.Department != "" {
		conds = append(conds, "department = ?")
		args = append(args, f.Department)
	}
	if f.Technique != "" {
		conds = append(conds, "technique = ?")
		args = append(args, f.Technique)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}

	rows, err := db.conn.Query(
		`SELECT `+rowColumns+` FROM documents`+where+` ORDER BY path LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	out := []DocumentRow{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		r.Document.Body = ""
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// Stats counts catalogued documents per year and per technique.
func (db *DB) Stats() (*Stats, error) {
	s := &Stats{ByYear: map[int]int{}, ByTechnique: map[string]int{}}

	rows, err := db.conn.Query(`SELECT year, technique, count(*) FROM documents GROUP BY year, technique`)
	if err != nil {
		return nil, fmt.Errorf("catalog: stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			year int
			tech string
			n    int
		)
		if err := rows.Scan(&year, &tech, &n); err != nil {
			return nil, err
		}
		s.Documents += n
		s.ByYear[year] += n
		s.ByTechnique[tech] += n
	}
	return s, rows.Err()
}

// AllChecksums returns path → checksum for every catalogued document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
