package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/storymesh/storymesh/core"
)

// Renderer turns a single shot into a video locator (URL or path). It may
// fail with transient errors; callers wrap invocations in a retry policy.
// A Renderer that prefers degraded output over failure may return a
// placeholder locator instead of an error.
type Renderer interface {
	RenderShot(ctx context.Context, style core.GlobalStyle, shot *core.Shot) (string, error)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, style core.GlobalStyle, shot *core.Shot) (string, error)

// RenderShot implements Renderer.
func (f RendererFunc) RenderShot(ctx context.Context, style core.GlobalStyle, shot *core.Shot) (string, error) {
	return f(ctx, style, shot)
}

// MockRenderer is an in-memory Renderer for tests & examples. It records
// every rendered shot id and serves deterministic locators; individual
// shot ids can be configured to fail.
type MockRenderer struct {
	mu       sync.Mutex
	rendered []string
	failures map[string]error
}

// NewMockRenderer constructs an empty MockRenderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{failures: map[string]error{}}
}

// FailShot configures the renderer to fail for the given shot id.
func (m *MockRenderer) FailShot(shotID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[shotID] = err
}

// Rendered returns the ids of all successfully rendered shots, in order.
func (m *MockRenderer) Rendered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.rendered))
	copy(out, m.rendered)
	return out
}

// RenderShot implements Renderer.
func (m *MockRenderer) RenderShot(ctx context.Context, _ core.GlobalStyle, shot *core.Shot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[shot.ID]; ok {
		return "", err
	}
	m.rendered = append(m.rendered, shot.ID)
	return fmt.Sprintf("mock://render/%s.mp4", shot.ID), nil
}
