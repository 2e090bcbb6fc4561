package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultLoaderReadyImmediatelyWithoutPreload(t *testing.T) {
	l := New(NewDefault(nil), zap.NewNop())
	require.Equal(t, Loading, l.CurrentState())

	state := l.Transition(Event{Name: "initialized"})
	assert.Equal(t, Ready, state)
	assert.True(t, l.IsReady())
}

func TestDefaultLoaderWaitsForPreloadComplete(t *testing.T) {
	l := New(NewDefault([]string{"file:///a.ts", "file:///b.ts"}), zap.NewNop())

	state := l.Transition(Event{Name: "initialized"})
	assert.Equal(t, Loading, state)
	assert.False(t, l.IsReady())

	state = l.Transition(Event{Name: "preloadComplete"})
	assert.Equal(t, Ready, state)
	assert.True(t, l.IsReady())
}

func TestRoslynLoaderGatedUntilProjectInitializationComplete(t *testing.T) {
	l := New(NewRoslyn(), zap.NewNop())
	assert.False(t, l.IsReady())

	l.Transition(Event{Name: "initialized"})
	assert.False(t, l.IsReady())

	state := l.Transition(Event{Name: "projectInitializationComplete"})
	assert.Equal(t, Ready, state)
	assert.True(t, l.IsReady())
}

func TestRoslynLoaderAcceptsVendorToast(t *testing.T) {
	l := New(NewRoslyn(), zap.NewNop())

	state := l.Transition(Event{Name: "vendorToast", Payload: "Solution load complete."})
	assert.Equal(t, Ready, state)
	assert.True(t, l.IsReady())
}

func TestRoslynLoaderIgnoresUnrelatedToast(t *testing.T) {
	l := New(NewRoslyn(), zap.NewNop())

	state := l.Transition(Event{Name: "vendorToast", Payload: "Indexing 3 of 10 projects"})
	assert.Equal(t, Loading, state)
	assert.False(t, l.IsReady())
}

func TestReadyAtAndLoadingStartedAtAreStamped(t *testing.T) {
	l := New(NewDefault(nil), zap.NewNop())
	status := l.Status()
	assert.False(t, status.LoadingStartedAt.IsZero())
	assert.True(t, status.ReadyAt.IsZero())

	l.Transition(Event{Name: "initialized"})
	status = l.Status()
	assert.False(t, status.ReadyAt.IsZero())
}

func TestRegistryFallsBackToDefaultOnUnknownName(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	v := r.Resolve("some-unknown-vendor", nil)
	assert.Equal(t, "default", v.Name())
}

func TestRegistryResolvesRoslynByName(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	v := r.Resolve("csharp-roslyn", nil)
	assert.Equal(t, "csharp-roslyn", v.Name())
}

func TestFallbackToDefaultReadyIsImmediatelyReady(t *testing.T) {
	l := FallbackToDefaultReady(zap.NewNop())
	assert.True(t, l.IsReady())
	assert.Equal(t, Ready, l.CurrentState())
}

func TestFailForcesFailedState(t *testing.T) {
	l := New(NewDefault(nil), zap.NewNop())
	l.Fail()
	assert.Equal(t, Failed, l.CurrentState())
	assert.False(t, l.IsReady())
}
