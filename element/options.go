package element

import (
	"errors"

	"github.com/joeycumines/logiface"
)

// ErrNilRender is returned by [New] if no RenderFunc was provided.
var ErrNilRender = errors.New("element: nil render func")

type elementOptions struct {
	logger       *logiface.Logger[logiface.Event]
	name         string
	shouldUpdate func(changed Changed) bool
	updated      func(changed Changed)
	firstUpdated func(changed Changed)
	hasChanged   map[string]HasChangedFunc
}

// Option configures an [Element], see [New].
type Option interface {
	applyElement(*elementOptions) error
}

type elementOptionImpl struct {
	applyElementFunc func(*elementOptions) error
}

func (x *elementOptionImpl) applyElement(opts *elementOptions) error {
	return x.applyElementFunc(opts)
}

// WithLogger configures trace logging of the update lifecycle.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &elementOptionImpl{func(opts *elementOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithName sets the element name, included in log events.
func WithName(name string) Option {
	return &elementOptionImpl{func(opts *elementOptions) error {
		opts.name = name
		return nil
	}}
}

// WithShouldUpdate sets a guard evaluated at the start of each update. If
// it returns false, rendering and the updated hooks are skipped, but the
// update still completes.
func WithShouldUpdate(fn func(changed Changed) bool) Option {
	return &elementOptionImpl{func(opts *elementOptions) error {
		opts.shouldUpdate = fn
		return nil
	}}
}

// WithUpdated sets a hook called after every committed render.
func WithUpdated(fn func(changed Changed)) Option {
	return &elementOptionImpl{func(opts *elementOptions) error {
		opts.updated = fn
		return nil
	}}
}

// WithFirstUpdated sets a hook called after the first committed render,
// before the updated hook.
func WithFirstUpdated(fn func(changed Changed)) Option {
	return &elementOptionImpl{func(opts *elementOptions) error {
		opts.firstUpdated = fn
		return nil
	}}
}

// WithHasChanged overrides change detection for the named property. A nil
// fn restores the default, see [NotEqual].
func WithHasChanged(name string, fn HasChangedFunc) Option {
	return &elementOptionImpl{func(opts *elementOptions) error {
		if fn == nil {
			delete(opts.hasChanged, name)
			return nil
		}
		if opts.hasChanged == nil {
			opts.hasChanged = make(map[string]HasChangedFunc)
		}
		opts.hasChanged[name] = fn
		return nil
	}}
}

func resolveElementOptions(opts []Option) (*elementOptions, error) {
	cfg := &elementOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyElement(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
