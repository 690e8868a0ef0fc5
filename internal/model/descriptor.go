package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Brownie44l1/analyart/internal/preprocess"
)

// DefaultDescriptorPath is where the model descriptor lives relative to the
// working directory.
const DefaultDescriptorPath = "model/model.json"

// Descriptor is the model.json file shipped next to the ONNX weights.
type Descriptor struct {
	Format      string            `json:"format"`
	Weights     string            `json:"weights"`
	InputName   string            `json:"input_name"`
	OutputName  string            `json:"output_name"`
	InputShape  []int64           `json:"input_shape"`
	OutputShape []int64           `json:"output_shape"`
	Layout      preprocess.Layout `json:"layout"`
	ImageSize   int               `json:"image_size"`
	Classes     []string          `json:"classes,omitempty"`
}

// ReadDescriptor parses the descriptor at path, fills defaults and resolves
// the weights path relative to the descriptor's directory.
func ReadDescriptor(path string) (*Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model descriptor: %w", err)
	}

	var desc Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse model descriptor: %w", err)
	}

	desc.applyDefaults()
	if !filepath.IsAbs(desc.Weights) {
		desc.Weights = filepath.Join(filepath.Dir(path), desc.Weights)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (d *Descriptor) applyDefaults() {
	if d.Format == "" {
		d.Format = "onnx"
	}
	if d.Weights == "" {
		d.Weights = "model.onnx"
	}
	if d.InputName == "" {
		d.InputName = "input"
	}
	if d.OutputName == "" {
		d.OutputName = "output"
	}
	if d.Layout == "" {
		d.Layout = preprocess.NHWC
	}
	if d.ImageSize <= 0 {
		d.ImageSize = preprocess.DefaultSize
	}
	if len(d.InputShape) == 0 {
		d.InputShape = d.Preprocess().Shape()
	}
	if len(d.OutputShape) == 0 && len(d.Classes) > 0 {
		d.OutputShape = []int64{1, int64(len(d.Classes))}
	}
}

// Validate checks the descriptor is internally consistent.
func (d *Descriptor) Validate() error {
	if d.Format != "onnx" {
		return fmt.Errorf("unsupported model format %q", d.Format)
	}
	if err := d.Preprocess().Validate(); err != nil {
		return err
	}
	if len(d.OutputShape) == 0 {
		return fmt.Errorf("model descriptor has no output_shape")
	}
	for _, dim := range append(append([]int64{}, d.InputShape...), d.OutputShape...) {
		if dim <= 0 {
			return fmt.Errorf("model descriptor has non-positive dimension %d", dim)
		}
	}
	if want := d.Preprocess().Shape(); !slices.Equal(d.InputShape, want) {
		return fmt.Errorf("input_shape %v does not match %s layout for %dx%d RGB, want %v",
			d.InputShape, d.Layout, d.ImageSize, d.ImageSize, want)
	}
	return nil
}

// Preprocess returns the tensor options implied by the descriptor.
func (d *Descriptor) Preprocess() preprocess.Options {
	return preprocess.Options{Size: d.ImageSize, Layout: d.Layout}
}

// InputSize is the number of values in one input tensor.
func (d *Descriptor) InputSize() int {
	return product(d.InputShape)
}

// OutputSize is the number of classes, the last output dimension.
func (d *Descriptor) OutputSize() int {
	if len(d.OutputShape) == 0 {
		return 0
	}
	return int(d.OutputShape[len(d.OutputShape)-1])
}

func product(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}
