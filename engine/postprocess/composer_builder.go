package postprocess

import "github.com/cogentcore/webgpu/wgpu"

// ComposerBuilderOption is a functional option for configuring a Composer.
type ComposerBuilderOption func(*composer)

// WithLabel sets the label used for the composer's targets and in errors.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - ComposerBuilderOption: functional option to set the label
func WithLabel(label string) ComposerBuilderOption {
	return func(c *composer) {
		c.label = label
	}
}

// WithRenderToScreen sets whether the last enabled pass writes to the screen.
// Composers render to screen by default.
//
// Parameters:
//   - toScreen: false for an off-screen composer whose output is sampled later
//
// Returns:
//   - ComposerBuilderOption: functional option to set screen output
func WithRenderToScreen(toScreen bool) ComposerBuilderOption {
	return func(c *composer) {
		c.renderToScreen = toScreen
	}
}

// WithFormat sets the colour format of the ping-pong targets.
func WithFormat(format wgpu.TextureFormat) ComposerBuilderOption {
	return func(c *composer) {
		c.format = format
	}
}
