package bloom

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Carmen-Shannon/ruins/engine/renderer/material"
	"github.com/Carmen-Shannon/ruins/engine/renderer/render_target"
	"github.com/Carmen-Shannon/ruins/engine/scene"
)

// ErrSourcePass wraps failures of the bloom-source render.
var ErrSourcePass = errors.New("bloom source pass failed")

// ErrFinalPass wraps failures of the final mixed render.
var ErrFinalPass = errors.New("bloom final pass failed")

// Stage identifies a step of Compositor.Render reported to an Observer.
type Stage int

const (
	// StageMasked follows the placeholder swap, before the source pass runs.
	StageMasked Stage = iota

	// StageSourceRendered follows a successful source pass.
	StageSourceRendered

	// StageRestored follows the restore of every saved material.
	StageRestored

	// StageFinalRendered follows a successful final pass.
	StageFinalRendered
)

// String returns a lowercase name for the stage.
func (s Stage) String() string {
	switch s {
	case StageMasked:
		return "masked"
	case StageSourceRendered:
		return "source-rendered"
	case StageRestored:
		return "restored"
	case StageFinalRendered:
		return "final-rendered"
	default:
		return "unknown"
	}
}

// Observer receives the stage just completed and the number of materials
// held in the save-table at that point.
type Observer func(stage Stage, saved int)

// SourcePass renders the bloom-source image of a scene whose non-bloom nodes
// currently hold the placeholder material.
type SourcePass interface {
	RenderSource(s scene.Scene) (render_target.RenderTarget, error)
}

// FinalPass renders and presents the displayed frame, mixing bloom into the
// full-colour scene. bloom is nil when the compositor is disabled.
type FinalPass interface {
	RenderFinal(s scene.Scene, bloom render_target.RenderTarget) error
}

// SourcePassFunc adapts a function to the SourcePass interface.
type SourcePassFunc func(s scene.Scene) (render_target.RenderTarget, error)

// RenderSource calls f(s).
func (f SourcePassFunc) RenderSource(s scene.Scene) (render_target.RenderTarget, error) {
	return f(s)
}

// FinalPassFunc adapts a function to the FinalPass interface.
type FinalPassFunc func(s scene.Scene, bloom render_target.RenderTarget) error

// RenderFinal calls f(s, bloom).
func (f FinalPassFunc) RenderFinal(s scene.Scene, bloom render_target.RenderTarget) error {
	return f(s, bloom)
}

// Stats counts what the previous Render did to the scene.
type Stats struct {
	// Swapped is the number of nodes that held the placeholder during the source pass.
	Swapped int
	// NilMaterial is the number of non-bloom nodes skipped because they had no material.
	NilMaterial int
	// AlreadyMasked is the number of non-bloom nodes that already held the placeholder.
	AlreadyMasked int
	// Bloom is the number of bloom nodes left untouched.
	Bloom int
}

// savedMaterial is one save-table entry.
type savedMaterial struct {
	node     scene.Node
	original material.Material
}

// compositor is the implementation of the Compositor interface.
type compositor struct {
	source      SourcePass
	final       FinalPass
	placeholder material.Material
	observer    Observer
	logger      *slog.Logger
	enabled     bool
	stats       Stats
}

// Compositor renders a scene with selective bloom: only nodes classified
// bloom contribute to the bloom image, every node appears in the final frame.
type Compositor interface {
	// Render composites one frame.
	//
	// Non-bloom nodes holding a material other than the placeholder are
	// switched to the placeholder, the source pass runs, every switched node
	// gets its original material back, then the final pass runs with the
	// source pass output. Materials are restored on every exit path,
	// including a panic in either pass; the panic continues after restore.
	//
	// Parameters:
	//   - s: the scene to render
	//
	// Returns:
	//   - error: ErrSourcePass or ErrFinalPass wrapping the pass error
	Render(s scene.Scene) error

	// Placeholder returns the material substituted during the source pass.
	Placeholder() material.Material

	// LastStats returns the counts recorded by the most recent Render.
	LastStats() Stats

	// Enabled reports whether bloom is composited. A disabled compositor
	// skips the source pass and hands a nil bloom target to the final pass.
	Enabled() bool

	// SetEnabled turns bloom compositing on or off.
	SetEnabled(enabled bool)
}

var _ Compositor = &compositor{}

// NewCompositor creates a Compositor over the two passes.
//
// Parameters:
//   - source: renders the bloom-source image
//   - final: renders the displayed frame
//   - options: functional options
//
// Returns:
//   - Compositor: the new compositor
func NewCompositor(source SourcePass, final FinalPass, options ...CompositorBuilderOption) Compositor {
	c := &compositor{
		source:  source,
		final:   final,
		enabled: true,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.placeholder == nil {
		c.placeholder = material.NewPlaceholder()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *compositor) Render(s scene.Scene) error {
	if !c.enabled {
		c.stats = Stats{}
		if err := c.final.RenderFinal(s, nil); err != nil {
			return fmt.Errorf("%w: %w", ErrFinalPass, err)
		}
		c.observe(StageFinalRendered, 0)
		return nil
	}

	saved := make(map[uuid.UUID]savedMaterial)
	defer func() {
		if n := restore(saved); n > 0 {
			c.logger.Debug("restored materials on early exit", slog.Int("count", n))
		}
	}()

	c.stats = c.mask(s, saved)
	c.observe(StageMasked, len(saved))

	bloomTex, err := c.source.RenderSource(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourcePass, err)
	}
	c.observe(StageSourceRendered, len(saved))

	restore(saved)
	c.observe(StageRestored, len(saved))

	if err := c.final.RenderFinal(s, bloomTex); err != nil {
		return fmt.Errorf("%w: %w", ErrFinalPass, err)
	}
	c.observe(StageFinalRendered, len(saved))
	return nil
}

// mask moves every maskable node onto the placeholder and records its
// original material in saved.
func (c *compositor) mask(s scene.Scene, saved map[uuid.UUID]savedMaterial) Stats {
	var stats Stats
	s.Traverse(func(n scene.Node) {
		if n.Class() == scene.ClassBloom {
			stats.Bloom++
			return
		}
		m := n.Material()
		switch {
		case m == nil:
			stats.NilMaterial++
		case m == c.placeholder || material.IsPlaceholder(m):
			stats.AlreadyMasked++
		default:
			saved[n.ID()] = savedMaterial{node: n, original: m}
			n.SetMaterial(c.placeholder)
			stats.Swapped++
		}
	})
	return stats
}

// restore puts every saved material back and drains the table.
func restore(saved map[uuid.UUID]savedMaterial) int {
	n := len(saved)
	for id, entry := range saved {
		entry.node.SetMaterial(entry.original)
		delete(saved, id)
	}
	return n
}

func (c *compositor) observe(stage Stage, saved int) {
	if c.observer != nil {
		c.observer(stage, saved)
	}
}

func (c *compositor) Placeholder() material.Material {
	return c.placeholder
}

func (c *compositor) LastStats() Stats {
	return c.stats
}

func (c *compositor) Enabled() bool {
	return c.enabled
}

func (c *compositor) SetEnabled(enabled bool) {
	c.enabled = enabled
}
