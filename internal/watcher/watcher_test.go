package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

type fakeBuild struct {
	release   chan error
	cancelled chan struct{}
	once      sync.Once
}

func newFakeBuild() *fakeBuild {
	return &fakeBuild{
		release:   make(chan error, 1),
		cancelled: make(chan struct{}),
	}
}

func (b *fakeBuild) Wait() error {
	select {
	case err := <-b.release:
		return err
	case <-b.cancelled:
		return errors.New("signal: killed")
	}
}

func (b *fakeBuild) Cancel() {
	b.once.Do(func() { close(b.cancelled) })
}

func (b *fakeBuild) isCancelled() bool {
	select {
	case <-b.cancelled:
		return true
	default:
		return false
	}
}

type fakeBuilder struct {
	started chan *fakeBuild
	err     error
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{started: make(chan *fakeBuild, 16)}
}

func (f *fakeBuilder) Start(ctx context.Context) (Build, error) {
	if f.err != nil {
		return nil, f.err
	}
	build := newFakeBuild()
	f.started <- build
	return build, nil
}

type manualTrigger struct {
	fire chan string
	err  error
}

func newManualTrigger() *manualTrigger {
	return &manualTrigger{fire: make(chan string)}
}

func (m *manualTrigger) Run(ctx context.Context, notify func(reason string)) error {
	if m.err != nil {
		return m.err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case reason := <-m.fire:
			notify(reason)
		}
	}
}

func nextBuild(t *testing.T, builder *fakeBuilder) *fakeBuild {
	t.Helper()
	select {
	case build := <-builder.started:
		return build
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a build to start")
		return nil
	}
}

func nextState(t *testing.T, states <-chan State) State {
	t.Helper()
	select {
	case state := <-states:
		return state
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a state change")
		return StateIdle
	}
}

func startWatcher(t *testing.T, w *Watcher) (chan State, context.CancelFunc, <-chan error) {
	t.Helper()
	states := make(chan State, 16)
	w.OnStateChange = func(s State) { states <- s }

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- w.Run(ctx) }()
	t.Cleanup(cancel)

	return states, cancel, result
}

func waitResult(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for watcher to stop")
		return nil
	}
}

func TestWatcher_InitialBuild(t *testing.T) {
	builder := newFakeBuilder()
	w := New(builder)
	states, cancel, result := startWatcher(t, w)

	build := nextBuild(t, builder)
	assert.Equal(t, StateBuilding, nextState(t, states))

	build.release <- nil
	assert.Equal(t, StateIdle, nextState(t, states))

	cancel()
	require.NoError(t, waitResult(t, result))
}

func TestWatcher_ChangeCancelsRunningBuild(t *testing.T) {
	builder := newFakeBuilder()
	trigger := newManualTrigger()
	w := New(builder, trigger)
	states, cancel, result := startWatcher(t, w)

	first := nextBuild(t, builder)
	assert.Equal(t, StateBuilding, nextState(t, states))

	trigger.fire <- "books.md changed"

	second := nextBuild(t, builder)
	assert.True(t, first.isCancelled(), "running build is killed before the next starts")
	assert.False(t, second.isCancelled())
	assert.Equal(t, StateIdle, nextState(t, states))
	assert.Equal(t, StateBuilding, nextState(t, states))

	// The superseded build's failure must not end the current one
	second.release <- nil
	assert.Equal(t, StateIdle, nextState(t, states))

	cancel()
	require.NoError(t, waitResult(t, result))
}

func TestWatcher_ChangeWhileIdle(t *testing.T) {
	builder := newFakeBuilder()
	trigger := newManualTrigger()
	w := New(builder, trigger)
	states, cancel, result := startWatcher(t, w)

	first := nextBuild(t, builder)
	assert.Equal(t, StateBuilding, nextState(t, states))
	first.release <- errors.New("exit status 1")
	assert.Equal(t, StateIdle, nextState(t, states))

	trigger.fire <- "books.md changed"
	second := nextBuild(t, builder)
	assert.Equal(t, StateBuilding, nextState(t, states))
	assert.False(t, first.isCancelled())

	second.release <- nil
	assert.Equal(t, StateIdle, nextState(t, states))

	cancel()
	require.NoError(t, waitResult(t, result))
}

func TestWatcher_StopKillsRunningBuild(t *testing.T) {
	builder := newFakeBuilder()
	w := New(builder, newManualTrigger())
	states, cancel, result := startWatcher(t, w)

	build := nextBuild(t, builder)
	assert.Equal(t, StateBuilding, nextState(t, states))

	cancel()
	require.NoError(t, waitResult(t, result))
	assert.True(t, build.isCancelled())
	assert.Equal(t, StateIdle, nextState(t, states))
}

func TestWatcher_TriggerError(t *testing.T) {
	builder := newFakeBuilder()
	trigger := &manualTrigger{err: errors.New("watch failed")}
	w := New(builder, trigger)
	_, _, result := startWatcher(t, w)

	build := nextBuild(t, builder)

	err := waitResult(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch failed")
	assert.True(t, build.isCancelled())
}

func TestWatcher_BuilderStartError(t *testing.T) {
	builder := newFakeBuilder()
	builder.err = errors.New("no such file")
	w := New(builder)
	states, cancel, result := startWatcher(t, w)

	cancel()
	require.NoError(t, waitResult(t, result))
	assert.Empty(t, states)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "building", StateBuilding.String())
}
