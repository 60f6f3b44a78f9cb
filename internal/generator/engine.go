// Package generator materialises a Blueprint into a year/department tree of
// randomly selected, randomly annotated documents.
package generator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"path"
	"strconv"
	"strings"

	"github.com/starford/datagen/internal/apperr"
	"github.com/starford/datagen/internal/models"
	"github.com/starford/datagen/internal/storage"
)

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes the engine's draws reproducible. Zero keeps the random seed.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = newRand(seed)
	}
}

// WithLogger sets the logger used for progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine owns the random source and drives directory creation and document
// emission. It is not safe for concurrent use.
type Engine struct {
	store  storage.Provider
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates an Engine writing into store.
func New(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		rng:    newRand(0),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run creates <year>/<department>/ for every combination in bp and fills each
// leaf with 1–8 documents. The first failure aborts the run; directories and
// files created before it are left in place.
func (e *Engine) Run(ctx context.Context, bp *models.Blueprint) error {
	if len(bp.Texts) == 0 {
		return apperr.ErrEmptyTemplateSet
	}

	var dirs, files int
	for _, year := range bp.Years {
		yearDir := strconv.Itoa(year)
		if err := e.store.MakeDir(yearDir); err != nil {
			return &apperr.DirectoryCreationError{Path: yearDir, Err: err}
		}
		dirs++

		for _, dept := range bp.Departments {
			if err := ctx.Err(); err != nil {
				return err
			}
			leaf := path.Join(yearDir, dept)
			if err := e.store.MakeDir(leaf); err != nil {
				return &apperr.DirectoryCreationError{Path: leaf, Err: err}
			}
			dirs++

			n, err := e.fillLeaf(leaf, year, bp.Texts)
			files += n
			if err != nil {
				return err
			}
			e.logger.Debug("generator: leaf filled",
				slog.String("dir", leaf),
				slog.Int("files", n))
		}
	}

	e.logger.Info("generator: archive generated",
		slog.String("root", e.store.Root()),
		slog.Int("directories", dirs),
		slog.Int("files", files))
	return nil
}

// fillLeaf writes between 1 and 8 documents into leaf, picking templates
// with replacement. A repeated title replaces the earlier file, so the
// returned count is the number of distinct files left in leaf.
func (e *Engine) fillLeaf(leaf string, year int, texts []models.Template) (int, error) {
	count := fileCount(e.rng)
	written := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		tmpl := &texts[e.rng.IntN(len(texts))]
		doc := e.stamp(tmpl, year)

		name := doc.FileName()
		target := path.Join(leaf, name)
		if !safeFileName(name) {
			return len(written), &apperr.FileWriteError{Path: target, Err: apperr.ErrUnsafeTitle}
		}
		if err := e.store.Write(target, doc.Render()); err != nil {
			return len(written), &apperr.FileWriteError{Path: target, Err: err}
		}
		written[name] = struct{}{}
	}
	return len(written), nil
}

// stamp builds a document from tmpl with freshly drawn metadata.
func (e *Engine) stamp(tmpl *models.Template, year int) *models.Document {
	return &models.Document{
		Title:     tmpl.Title,
		Author:    models.DefaultAuthor,
		Created:   creationDate(e.rng, year),
		Reference: reference(e.rng),
		Technique: technique(e.rng),
		Digitized: models.DigitizedYear,
		Body:      tmpl.Content,
	}
}

// safeFileName rejects names that would leave the leaf directory. Every
// name carries the .txt suffix, so "." and ".." cannot come out of a title.
func safeFileName(name string) bool {
	return !strings.ContainsAny(name, `/\`)
}

