package bloom

import (
	"log/slog"

	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
)

// CompositorBuilderOption is a functional option for configuring a Compositor during construction.
type CompositorBuilderOption func(*compositor)

// WithPlaceholder sets the material substituted for non-bloom nodes.
// Defaults to material.NewPlaceholder().
//
// Parameters:
//   - m: the placeholder material
//
// Returns:
//   - CompositorBuilderOption: functional option to set the placeholder
func WithPlaceholder(m material.Material) CompositorBuilderOption {
	return func(c *compositor) {
		c.placeholder = m
	}
}

// WithObserver registers a hook called after each completed stage of Render.
//
// Parameters:
//   - o: the observer
//
// Returns:
//   - CompositorBuilderOption: functional option to set the observer
func WithObserver(o Observer) CompositorBuilderOption {
	return func(c *compositor) {
		c.observer = o
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) CompositorBuilderOption {
	return func(c *compositor) {
		c.logger = logger
	}
}

// WithEnabled sets whether bloom starts enabled. Defaults to true.
func WithEnabled(enabled bool) CompositorBuilderOption {
	return func(c *compositor) {
		c.enabled = enabled
	}
}
