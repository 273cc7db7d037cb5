package postprocess

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
)

// ErrNoScreen is returned when a composer renders to screen without a screen target.
var ErrNoScreen = errors.New("postprocess: render to screen requested without a screen target")

// composer is the implementation of the Composer interface.
type composer struct {
	label  string
	format wgpu.TextureFormat

	factory render_target.Factory
	width   uint32
	height  uint32

	read  render_target.RenderTarget
	write render_target.RenderTarget

	passes         []Pass
	renderToScreen bool
}

// Composer runs an ordered chain of passes over a pair of ping-pong targets.
type Composer interface {
	// AddPass appends a pass and sizes it to the composer.
	//
	// Parameters:
	//   - p: the pass to append
	//
	// Returns:
	//   - error: if the pass fails to resize
	AddPass(p Pass) error

	// InsertPass inserts a pass at index, clamped to the chain length.
	InsertPass(p Pass, index int) error

	// RemovePass removes p from the chain. Unknown passes are ignored.
	RemovePass(p Pass)

	// Passes returns the chain in order.
	Passes() []Pass

	// Swap exchanges the read and write targets.
	Swap()

	// ReadTarget returns the target holding the chain's output after Render.
	ReadTarget() render_target.RenderTarget

	// WriteTarget returns the current write target.
	WriteTarget() render_target.RenderTarget

	// RenderToScreen reports whether the last enabled pass writes to the screen.
	RenderToScreen() bool

	// SetRenderToScreen sets whether the last enabled pass writes to the screen.
	SetRenderToScreen(toScreen bool)

	// Size returns the composer size in pixels.
	Size() (width, height uint32)

	// SetSize reallocates both targets and resizes every pass.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: if a target fails to allocate or a pass fails to resize
	SetSize(width, height uint32) error

	// Render runs each enabled pass in order, swapping targets after passes
	// that need it.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: the first pass error, wrapped with the pass name
	Render(ctx *RenderContext) error

	// Release frees both targets and every pass.
	Release()
}

var _ Composer = &composer{}

// NewComposer creates a Composer with two targets of the given size allocated from factory.
//
// Parameters:
//   - factory: allocates the ping-pong targets
//   - width, height: initial size in pixels
//   - options: functional options
//
// Returns:
//   - Composer: the composer
//   - error: if a target fails to allocate
func NewComposer(factory render_target.Factory, width, height uint32, options ...ComposerBuilderOption) (Composer, error) {
	c := &composer{
		label:          "composer",
		format:         render_target.DefaultFormat,
		factory:        factory,
		renderToScreen: true,
	}
	for _, opt := range options {
		opt(c)
	}
	if err := c.allocate(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *composer) AddPass(p Pass) error {
	return c.InsertPass(p, len(c.passes))
}

func (c *composer) InsertPass(p Pass, index int) error {
	if err := p.SetSize(c.width, c.height); err != nil {
		return fmt.Errorf("%s: failed to size pass %s: %w", c.label, p.Name(), err)
	}
	index = max(0, min(index, len(c.passes)))
	c.passes = slices.Insert(c.passes, index, p)
	return nil
}

func (c *composer) RemovePass(p Pass) {
	if i := slices.Index(c.passes, p); i >= 0 {
		c.passes = slices.Delete(c.passes, i, i+1)
	}
}

func (c *composer) Passes() []Pass {
	return slices.Clone(c.passes)
}

func (c *composer) Swap() {
	c.read, c.write = c.write, c.read
}

func (c *composer) ReadTarget() render_target.RenderTarget {
	return c.read
}

func (c *composer) WriteTarget() render_target.RenderTarget {
	return c.write
}

func (c *composer) RenderToScreen() bool {
	return c.renderToScreen
}

func (c *composer) SetRenderToScreen(toScreen bool) {
	c.renderToScreen = toScreen
}

func (c *composer) Size() (width, height uint32) {
	return c.width, c.height
}

func (c *composer) SetSize(width, height uint32) error {
	if width == c.width && height == c.height {
		return nil
	}
	if err := c.allocate(width, height); err != nil {
		return err
	}
	for _, p := range c.passes {
		if err := p.SetSize(c.width, c.height); err != nil {
			return fmt.Errorf("%s: failed to size pass %s: %w", c.label, p.Name(), err)
		}
	}
	return nil
}

func (c *composer) Render(ctx *RenderContext) error {
	last := c.lastEnabled()
	for i, p := range c.passes {
		if !p.Enabled() {
			continue
		}
		p.SetRenderToScreen(c.renderToScreen && i == last)
		if p.RenderToScreen() && ctx.Screen == nil {
			return fmt.Errorf("%s: pass %s: %w", c.label, p.Name(), ErrNoScreen)
		}
		if err := p.Render(ctx, c.write, c.read); err != nil {
			return fmt.Errorf("%s: pass %s: %w", c.label, p.Name(), err)
		}
		if p.NeedsSwap() {
			c.Swap()
		}
	}
	return nil
}

func (c *composer) Release() {
	for _, p := range c.passes {
		p.Release()
	}
	c.passes = nil
	c.releaseTargets()
}

// lastEnabled returns the index of the last enabled pass, or -1.
func (c *composer) lastEnabled() int {
	for i := len(c.passes) - 1; i >= 0; i-- {
		if c.passes[i].Enabled() {
			return i
		}
	}
	return -1
}

// allocate replaces both targets with new ones of the given size.
func (c *composer) allocate(width, height uint32) error {
	width, height = max(width, 1), max(height, 1)
	first, err := c.factory(c.label+" target 1", width, height, c.format)
	if err != nil {
		return fmt.Errorf("%s: %w", c.label, err)
	}
	second, err := c.factory(c.label+" target 2", width, height, c.format)
	if err != nil {
		first.Release()
		return fmt.Errorf("%s: %w", c.label, err)
	}
	c.releaseTargets()
	c.write, c.read = first, second
	c.width, c.height = width, height
	return nil
}

func (c *composer) releaseTargets() {
	if c.read != nil {
		c.read.Release()
	}
	if c.write != nil {
		c.write.Release()
	}
	c.read, c.write = nil, nil
}
