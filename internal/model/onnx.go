package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var ortInit sync.Mutex

// OnnxOpener opens skl2onnx-exported classifiers with onnxruntime.
type OnnxOpener struct {
	inputName  string
	outputName string
}

// NewOnnxOpener initializes the onnxruntime environment. libPath may be empty to use the
// platform default shared library name.
func NewOnnxOpener(cfg Config) (*OnnxOpener, error) {
	ortInit.Lock()
	defer ortInit.Unlock()

	if !ort.IsInitialized() {
		if cfg.RuntimeLib != "" {
			ort.SetSharedLibraryPath(cfg.RuntimeLib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	return &OnnxOpener{inputName: cfg.InputName, outputName: cfg.OutputName}, nil
}

func (o *OnnxOpener) Open(path string, width int) (Classifier, error) {
	inputs, _, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("read model info: %w", err)
	}
	if err := checkInputWidth(inputs, o.inputName, width); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{o.inputName}, []string{o.outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &onnxClassifier{session: session, width: width}, nil
}

func (o *OnnxOpener) Close() error {
	ortInit.Lock()
	defer ortInit.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

func checkInputWidth(inputs []ort.InputOutputInfo, name string, width int) error {
	for _, in := range inputs {
		if in.Name != name {
			continue
		}
		dims := in.Dimensions
		if len(dims) != 2 {
			return fmt.Errorf("input %q has rank %d, expected 2", name, len(dims))
		}
		// -1 marks a dynamic dimension.
		if dims[1] > 0 && dims[1] != int64(width) {
			return fmt.Errorf("%w: input %q takes %d features, schema has %d", ErrWidthMismatch, name, dims[1], width)
		}
		return nil
	}
	return fmt.Errorf("model has no input named %q", name)
}

type onnxClassifier struct {
	session *ort.DynamicAdvancedSession
	width   int
}

// Predict runs the session on a float32 batch of shape (len(batch), width).
func (c *onnxClassifier) Predict(ctx context.Context, batch [][]float64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, nil
	}

	data := make([]float32, 0, len(batch)*c.width)
	for _, row := range batch {
		for _, v := range row {
			data = append(data, float32(v))
		}
	}

	input, err := ort.NewTensor(ort.NewShape(int64(len(batch)), int64(c.width)), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(int64(len(batch))))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := c.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	labels := make([]int64, len(batch))
	copy(labels, output.GetData())
	return labels, nil
}

func (c *onnxClassifier) Close() error {
	return c.session.Destroy()
}
