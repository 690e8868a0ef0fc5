// Package labels holds the art-movement class table the classifier was
// trained on. Order matters: index i names output i of the model.
package labels

import (
	"errors"
	"fmt"
)

// ErrMismatch is returned when a label table does not line up with the
// model output.
var ErrMismatch = errors.New("label table does not match model output")

// Default is the class order of the bundled model.
var Default = []string{"Realism", "Impressionism", "Imperialism", "Cubism", "Pop-Art", "Minimalism"}

// Table returns a copy of configured when it is non-empty, otherwise a copy
// of Default.
func Table(configured []string) []string {
	src := configured
	if len(src) == 0 {
		src = Default
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Validate checks that table has one entry per model output and, when the
// model artifact declares its own class names, that both agree in order.
func Validate(table []string, outputSize int, declared []string) error {
	if len(table) == 0 {
		return fmt.Errorf("%w: empty label table", ErrMismatch)
	}
	if len(table) != outputSize {
		return fmt.Errorf("%w: %d labels for %d outputs", ErrMismatch, len(table), outputSize)
	}
	if len(declared) == 0 {
		return nil
	}
	if len(declared) != len(table) {
		return fmt.Errorf("%w: model declares %d classes, table has %d", ErrMismatch, len(declared), len(table))
	}
	for i := range table {
		if table[i] != declared[i] {
			return fmt.Errorf("%w: position %d is %q in the table but %q in the model", ErrMismatch, i, table[i], declared[i])
		}
	}
	return nil
}
