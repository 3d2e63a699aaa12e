// Package model loads the serialized disease classifiers and runs inference on them.
package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Skufu/healthassistant/internal/diagnosis"
)

const DefaultDir = "saved_models"

var ErrWidthMismatch = errors.New("feature width mismatch")

type Config struct {
	RuntimeLib string
	InputName  string
	OutputName string
}

// Opener turns one artifact on disk into a predictor with the given feature width.
type Opener interface {
	Open(path string, width int) (Classifier, error)
	Close() error
}

// Classifier is a loaded artifact.
type Classifier interface {
	diagnosis.Predictor
	Close() error
}

// Store holds every loaded classifier for the life of the process. It is read-only after Load.
type Store struct {
	opener  Opener
	models  map[diagnosis.Disease]Classifier
	schemas map[diagnosis.Disease]diagnosis.Schema
}

// Load opens one artifact per schema. Any failure closes what was already opened and
// returns an error; there is no partial store.
func Load(opener Opener, dir string, schemas []diagnosis.Schema) (*Store, error) {
	s := &Store{
		opener:  opener,
		models:  make(map[diagnosis.Disease]Classifier, len(schemas)),
		schemas: make(map[diagnosis.Disease]diagnosis.Schema, len(schemas)),
	}

	for _, schema := range schemas {
		path := filepath.Join(dir, schema.ModelFile)
		if _, err := os.Stat(path); err != nil {
			s.Close()
			return nil, fmt.Errorf("load %s model: %w", schema.Disease, err)
		}

		c, err := opener.Open(path, schema.Width())
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("load %s model from %s: %w", schema.Disease, path, err)
		}
		s.models[schema.Disease] = c
		s.schemas[schema.Disease] = schema
	}

	return s, nil
}

// Predictors exposes the classifiers keyed by disease.
func (s *Store) Predictors() map[diagnosis.Disease]diagnosis.Predictor {
	out := make(map[diagnosis.Disease]diagnosis.Predictor, len(s.models))
	for d, c := range s.models {
		out[d] = checked{Classifier: c, width: s.schemas[d].Width()}
	}
	return out
}

// Close releases every classifier and then the opener.
func (s *Store) Close() error {
	var errs []error
	for d, c := range s.models {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s model: %w", d, err))
		}
	}
	s.models = map[diagnosis.Disease]Classifier{}
	if s.opener != nil {
		if err := s.opener.Close(); err != nil {
			errs = append(errs, err)
		}
		s.opener = nil
	}
	return errors.Join(errs...)
}

// checked rejects rows whose length differs from the schema before they reach the model.
type checked struct {
	Classifier
	width int
}

func (c checked) Predict(ctx context.Context, batch [][]float64) ([]int64, error) {
	for i, row := range batch {
		if len(row) != c.width {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d", ErrWidthMismatch, i, len(row), c.width)
		}
	}
	return c.Classifier.Predict(ctx, batch)
}

// DetectDir finds the models directory next to the executable, falling back to the working
// directory and its parents.
func DetectDir(configured string) string {
	if configured != "" {
		return configured
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd, filepath.Dir(wd), filepath.Dir(filepath.Dir(wd)))
	}

	for _, dir := range candidates {
		path := filepath.Join(dir, DefaultDir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}

	return DefaultDir
}
