// Package diagnosis turns submitted form values into a disease prediction.
package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Predictor is a loaded classifier. Each row of batch is one feature vector; one label is
// returned per row.
type Predictor interface {
	Predict(ctx context.Context, batch [][]float64) ([]int64, error)
}

// Recorder keeps a tally of outcomes. It never sees feature values.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

type Outcome struct {
	Disease       Disease
	SchemaVersion int
	Label         int64
}

type Result struct {
	Disease       Disease `json:"disease"`
	SchemaVersion int     `json:"schemaVersion"`
	Label         int64   `json:"label"`
	Positive      bool    `json:"positive"`
	Diagnosis     string  `json:"diagnosis"`
}

var ErrNoPredictor = errors.New("no model loaded")

type Service struct {
	predictors map[Disease]Predictor
	recorder   Recorder
	logger     *zap.Logger
}

type Option func(*Service)

// WithRecorder stores each outcome through r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func NewService(predictors map[Disease]Predictor, options ...Option) *Service {
	s := &Service{
		predictors: predictors,
		logger:     zap.NewNop(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Diagnose parses values for disease d and runs its model on a single-item batch.
// Parse failures are returned as *InputError before the model is touched.
func (s *Service) Diagnose(ctx context.Context, d Disease, values map[string]string) (Result, error) {
	schema, err := Lookup(d)
	if err != nil {
		return Result{}, err
	}

	vec, err := ParseFeatures(schema, values)
	if err != nil {
		return Result{}, err
	}

	p, ok := s.predictors[d]
	if !ok || p == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoPredictor, d)
	}

	labels, err := p.Predict(ctx, [][]float64{vec})
	if err != nil {
		return Result{}, fmt.Errorf("predict %s: %w", d, err)
	}
	if len(labels) != 1 {
		return Result{}, fmt.Errorf("predict %s: got %d labels, expected 1", d, len(labels))
	}

	res := Interpret(schema, labels[0])
	s.logger.Debug("prediction", zap.String("disease", string(d)), zap.Int64("label", res.Label))

	if s.recorder != nil {
		o := Outcome{Disease: d, SchemaVersion: schema.Version, Label: res.Label}
		if err := s.recorder.Record(ctx, o); err != nil {
			s.logger.Warn("record outcome failed", zap.String("disease", string(d)), zap.Error(err))
		}
	}

	return res, nil
}

// Interpret maps a label to the schema's sentence: 1 is a positive finding, anything else is not.
func Interpret(s Schema, label int64) Result {
	res := Result{
		Disease:       s.Disease,
		SchemaVersion: s.Version,
		Label:         label,
		Positive:      label == 1,
		Diagnosis:     s.Negative,
	}
	if res.Positive {
		res.Diagnosis = s.Positive
	}
	return res
}
