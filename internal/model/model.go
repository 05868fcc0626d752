package model

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/Brownie44l1/bcd-api/internal/preprocess"
	ort "github.com/yalue/onnxruntime_go"
)

// Options configures Load.
type Options struct {
	Path string
	// RuntimeLib overrides the onnxruntime shared library location.
	RuntimeLib string
	// PoolSize is the number of sessions able to run concurrently.
	PoolSize int
	// ImageSize fills symbolic height and width axes of the model input.
	ImageSize int
}

// session owns one AdvancedSession and the tensors bound to it. A session is
// used by one request at a time.
type session struct {
	ort    *ort.AdvancedSession
	input  *ort.Tensor[float32]
	output *ort.Tensor[float32]
}

func (s *session) destroy() {
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
	if s.ort != nil {
		s.ort.Destroy()
	}
}

// Model is a loaded classifier. It is immutable after Load and safe for
// concurrent use.
type Model struct {
	meta     Metadata
	sessions []*session
	pool     chan *session
}

// Load reads an ONNX artifact and prepares opts.PoolSize inference sessions.
func Load(opts Options) (*Model, error) {
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 1
	}
	if opts.ImageSize <= 0 {
		opts.ImageSize = 64
	}

	if opts.RuntimeLib != "" {
		ort.SetSharedLibraryPath(opts.RuntimeLib)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model signature: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 input and 1 output, model has %d and %d", len(inputs), len(outputs))
	}

	meta := Metadata{
		InputName:   inputs[0].Name,
		OutputName:  outputs[0].Name,
		InputShape:  resolveInputShape(inputs[0].Dimensions, opts.ImageSize),
		OutputShape: pinDynamic(outputs[0].Dimensions),
	}
	if len(meta.InputShape) != 4 {
		return nil, fmt.Errorf("expected a 4-d image input, model input shape is %v", meta.InputShape)
	}
	if meta.OutputSize() < 1 {
		return nil, fmt.Errorf("model output shape %v is empty", meta.OutputShape)
	}

	m := &Model{
		meta: meta,
		pool: make(chan *session, opts.PoolSize),
	}
	for i := 0; i < opts.PoolSize; i++ {
		s, err := newSession(opts.Path, meta)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.sessions = append(m.sessions, s)
		m.pool <- s
	}

	return m, nil
}

func newSession(path string, meta Metadata) (*session, error) {
	s := &session{}

	var err error
	s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	s.output, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s.ort, err = ort.NewAdvancedSession(path,
		[]string{meta.InputName}, []string{meta.OutputName},
		[]ort.ArbitraryTensor{s.input}, []ort.ArbitraryTensor{s.output},
		nil)
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return s, nil
}

// resolveInputShape fixes symbolic axes of an NHWC input: batch to 1,
// height and width to size, channels to 3.
func resolveInputShape(shape ort.Shape, size int) []int64 {
	fill := []int64{1, int64(size), int64(size), 3}
	out := make([]int64, len(shape))
	for i, d := range shape {
		if d <= 0 && i < len(fill) {
			d = fill[i]
		}
		out[i] = d
	}
	return out
}

// pinDynamic fixes symbolic (batch) dimensions to 1.
func pinDynamic(shape ort.Shape) []int64 {
	out := make([]int64, len(shape))
	for i, d := range shape {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return out
}

func (m *Model) Metadata() Metadata {
	return m.meta
}

// InputSize is the spatial size the model was exported with.
func (m *Model) InputSize() preprocess.Size {
	return preprocess.Size{Height: int(m.meta.InputShape[1]), Width: int(m.meta.InputShape[2])}
}

// Infer runs the classifier on t and returns the per-class probabilities.
func (m *Model) Infer(ctx context.Context, t *preprocess.Tensor) ([]float32, error) {
	if !slices.Equal(t.Shape, m.meta.InputShape) {
		return nil, fmt.Errorf("input shape mismatch: got %v, model expects %v", t.Shape, m.meta.InputShape)
	}
	if int64(len(t.Data)) != m.meta.InputSize() {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(t.Data), m.meta.InputSize())
	}

	var s *session
	select {
	case s = <-m.pool:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { m.pool <- s }()

	copy(s.input.GetData(), t.Data)

	if err := s.ort.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.output.GetData()
	probs := make([]float32, len(out))
	copy(probs, out)
	return probs, nil
}

func (m *Model) Close() {
	for _, s := range m.sessions {
		s.destroy()
	}
	m.sessions = nil
	ort.DestroyEnvironment()
}
