// Package report collects non-fatal per-object problems found while
// exporting or importing a scene.
package report

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Warning is a problem with one object that did not stop the operation.
type Warning struct {
	Object string
	Err    error
}

func (w Warning) String() string {
	if w.Object == "" {
		return w.Err.Error()
	}
	return fmt.Sprintf("%s: %v", w.Object, w.Err)
}

// Warnings is an ordered list of warnings that also logs each one.
type Warnings struct {
	list []Warning
	log  *zap.Logger
}

// New creates an empty list that logs to log. A nil logger is allowed.
func New(log *zap.Logger) *Warnings {
	if log == nil {
		log = zap.NewNop()
	}
	return &Warnings{log: log}
}

// Add records a warning for object.
func (w *Warnings) Add(object string, err error) {
	w.list = append(w.list, Warning{Object: object, Err: err})
	w.log.Warn("degraded", zap.String("object", object), zap.Error(err))
}

// List returns the warnings in the order they were added.
func (w *Warnings) List() []Warning {
	return w.list
}

// Len returns the number of warnings.
func (w *Warnings) Len() int {
	return len(w.list)
}

// Err combines all warnings into one error, or nil when there are none.
func (w *Warnings) Err() error {
	return Join(w.list)
}

// Join combines warnings into one error, or nil when ws is empty.
func Join(ws []Warning) error {
	var err error
	for _, wr := range ws {
		if wr.Object == "" {
			err = multierr.Append(err, wr.Err)
			continue
		}
		err = multierr.Append(err, fmt.Errorf("%s: %w", wr.Object, wr.Err))
	}
	return err
}
