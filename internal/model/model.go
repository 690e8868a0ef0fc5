// Package model wraps the ONNX Runtime session that scores images.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/Brownie44l1/analyart/internal/labels"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// ErrInputSize is returned when a tensor does not match the model input.
var ErrInputSize = errors.New("input tensor size mismatch")

// Options configures Load.
type Options struct {
	// DescriptorPath points at model.json.
	DescriptorPath string
	// LibraryPath is the onnxruntime shared library. Empty uses the
	// library's platform default.
	LibraryPath string
	// Labels is checked against the model output when non-empty.
	Labels []string
}

// Model is a loaded classifier. It is safe for concurrent use: every Predict
// call owns its own tensors.
type Model struct {
	session *ort.DynamicAdvancedSession
	desc    Descriptor
	logger  *zap.Logger
}

// Load reads the descriptor, starts the runtime and opens a session on the
// weights. It runs once; there is no retry.
func Load(ctx context.Context, opts Options, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DescriptorPath == "" {
		opts.DescriptorPath = DefaultDescriptorPath
	}

	desc, err := ReadDescriptor(opts.DescriptorPath)
	if err != nil {
		return nil, err
	}
	if len(opts.Labels) > 0 {
		if err := labels.Validate(opts.Labels, desc.OutputSize(), desc.Classes); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(desc.Weights,
		[]string{desc.InputName}, []string{desc.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info("model loaded",
		zap.String("weights", desc.Weights),
		zap.Int64s("input_shape", desc.InputShape),
		zap.Int64s("output_shape", desc.OutputShape),
		zap.String("layout", string(desc.Layout)))

	return &Model{session: session, desc: *desc, logger: logger}, nil
}

// Descriptor returns the parsed model.json.
func (m *Model) Descriptor() Descriptor {
	return m.desc
}

// Predict runs one forward pass and returns the class scores. The input and
// output tensors live only for the duration of the call.
func (m *Model) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if want := m.desc.InputSize(); len(input) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInputSize, want, len(input))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(m.desc.InputShape...), input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(m.desc.OutputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := m.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	scores := make([]float32, len(outputTensor.GetData()))
	copy(scores, outputTensor.GetData())
	return scores, nil
}

// Close releases the session and the runtime environment.
func (m *Model) Close() error {
	var errs []error
	if m.session != nil {
		errs = append(errs, m.session.Destroy())
		m.session = nil
	}
	if ort.IsInitialized() {
		errs = append(errs, ort.DestroyEnvironment())
	}
	return errors.Join(errs...)
}
