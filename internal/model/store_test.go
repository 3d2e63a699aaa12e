package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/Skufu/healthassistant/internal/diagnosis"
)

type fakeOpener struct {
	opened  map[string]int
	closed  bool
	failOn  string
	classes []*fakeClassifier
}

func (f *fakeOpener) Open(path string, width int) (Classifier, error) {
	if filepath.Base(path) == f.failOn {
		return nil, errors.New("corrupt artifact")
	}
	if f.opened == nil {
		f.opened = map[string]int{}
	}
	f.opened[filepath.Base(path)] = width
	c := &fakeClassifier{}
	f.classes = append(f.classes, c)
	return c, nil
}

func (f *fakeOpener) Close() error {
	f.closed = true
	return nil
}

type fakeClassifier struct {
	calls  int
	closed bool
}

func (c *fakeClassifier) Predict(_ context.Context, batch [][]float64) ([]int64, error) {
	c.calls++
	return make([]int64, len(batch)), nil
}

func (c *fakeClassifier) Close() error {
	c.closed = true
	return nil
}

func writeArtifacts(t *testing.T, schemas []diagnosis.Schema) string {
	t.Helper()
	dir := t.TempDir()
	for _, s := range schemas {
		require.NoError(t, os.WriteFile(filepath.Join(dir, s.ModelFile), []byte("onnx"), 0o644))
	}
	return dir
}

func TestLoadOpensEveryArtifactOnce(t *testing.T) {
	schemas := diagnosis.Schemas()
	dir := writeArtifacts(t, schemas)
	opener := &fakeOpener{}

	store, err := Load(opener, dir, schemas)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"diabetes_model.onnx":      8,
		"heart_disease_model.onnx": 13,
		"parkinsons_model.onnx":    22,
		"breast_cancer_model.onnx": 10,
	}, opener.opened)
	assert.Len(t, store.Predictors(), 4)

	require.NoError(t, store.Close())
	assert.True(t, opener.closed)
	for _, c := range opener.classes {
		assert.True(t, c.closed)
	}
}

func TestLoadFailsOnMissingArtifact(t *testing.T) {
	schemas := diagnosis.Schemas()
	dir := writeArtifacts(t, schemas)
	require.NoError(t, os.Remove(filepath.Join(dir, "parkinsons_model.onnx")))
	opener := &fakeOpener{}

	_, err := Load(opener, dir, schemas)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, opener.closed)
	for _, c := range opener.classes {
		assert.True(t, c.closed)
	}
}

func TestLoadFailsOnUnreadableArtifact(t *testing.T) {
	schemas := diagnosis.Schemas()
	dir := writeArtifacts(t, schemas)

	_, err := Load(&fakeOpener{failOn: "heart_disease_model.onnx"}, dir, schemas)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heart")
}

func TestPredictorsRejectWrongWidth(t *testing.T) {
	schemas := diagnosis.Schemas()
	dir := writeArtifacts(t, schemas)
	opener := &fakeOpener{}
	store, err := Load(opener, dir, schemas)
	require.NoError(t, err)

	p := store.Predictors()[diagnosis.Diabetes]
	_, err = p.Predict(context.Background(), [][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrWidthMismatch)

	labels, err := p.Predict(context.Background(), [][]float64{{2, 120, 70, 30, 80, 25, 0.5, 33}})
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, labels)
}

func TestCheckInputWidth(t *testing.T) {
	info := []ort.InputOutputInfo{{Name: "float_input", Dimensions: ort.NewShape(-1, 8)}}

	assert.NoError(t, checkInputWidth(info, "float_input", 8))
	assert.ErrorIs(t, checkInputWidth(info, "float_input", 13), ErrWidthMismatch)
	assert.Error(t, checkInputWidth(info, "input", 8))

	dynamic := []ort.InputOutputInfo{{Name: "float_input", Dimensions: ort.NewShape(-1, -1)}}
	assert.NoError(t, checkInputWidth(dynamic, "float_input", 22))
}

func TestDetectDirPrefersConfigured(t *testing.T) {
	assert.Equal(t, "/opt/models", DetectDir("/opt/models"))
}

func TestDetectDirFindsWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, DefaultDir), 0o755))
	t.Chdir(root)

	assert.Equal(t, filepath.Join(root, DefaultDir), DetectDir(""))
}
