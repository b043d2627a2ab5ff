// Package options implements the functional options shared by the persist constructors.
package options

import (
	"errors"
	"fmt"

	"github.com/stssoft/persist/errs"
)

// Option configures a target of type T.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a function to Option.
type Func[T any] struct {
	name      string
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// Name returns the label given to the option, used in error messages.
func (f *Func[T]) Name() string {
	return f.name
}

// New creates an option that may reject its input.
func New[T any](name string, fn func(T) error) *Func[T] {
	return &Func[T]{name: name, applyFunc: fn}
}

// NoError creates an option that cannot fail.
func NoError[T any](name string, fn func(T)) *Func[T] {
	return &Func[T]{
		name: name,
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts in order and stops at the first failure.
//
// Failures are reported as errs.ErrInvalidArgument; a nil option is skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			name := "option"
			if named, ok := opt.(interface{ Name() string }); ok && named.Name() != "" {
				name = named.Name()
			}
			if errors.Is(err, errs.ErrInvalidArgument) {
				return fmt.Errorf("%s: %w", name, err)
			}

			return fmt.Errorf("%s: %w: %w", name, errs.ErrInvalidArgument, err)
		}
	}

	return nil
}
