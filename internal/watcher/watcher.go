package watcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// Build is a pipeline run in progress.
type Build interface {
	// Wait blocks until the build exits. It is called exactly once.
	Wait() error
	// Cancel terminates the build without waiting for it.
	Cancel()
}

// Builder starts pipeline runs.
type Builder interface {
	Start(ctx context.Context) (Build, error)
}

// Trigger reports events that should cause a rebuild. Run blocks until ctx
// is done and returns nil in that case.
type Trigger interface {
	Run(ctx context.Context, notify func(reason string)) error
}

type State int

const (
	StateIdle State = iota
	StateBuilding
)

func (s State) String() string {
	if s == StateBuilding {
		return "building"
	}
	return "idle"
}

type runningBuild struct {
	id     int
	build  Build
	exited chan struct{}
}

type buildDone struct {
	id  int
	err error
}

// Watcher rebuilds the catalog whenever a trigger fires. At most one build
// runs at a time: a new event kills the running build before the next one
// starts. All state is owned by the Run loop.
type Watcher struct {
	builder  Builder
	triggers []Trigger

	changes chan string
	done    chan buildDone
	stopped chan struct{}

	current *runningBuild
	state   State
	nextID  int

	// OnStateChange, when set, is called from the Run loop on every transition.
	OnStateChange func(State)
}

func New(builder Builder, triggers ...Trigger) *Watcher {
	return &Watcher{
		builder:  builder,
		triggers: triggers,
		changes:  make(chan string, 1),
		done:     make(chan buildDone),
		stopped:  make(chan struct{}),
	}
}

// Run builds once, then rebuilds on every trigger event until ctx is done.
// On return no build is running.
func (w *Watcher) Run(ctx context.Context) error {
	triggerCtx, cancelTriggers := context.WithCancel(ctx)
	triggerErrs := make(chan error, len(w.triggers))

	var wg sync.WaitGroup
	for _, trigger := range w.triggers {
		wg.Add(1)
		go func(trigger Trigger) {
			defer wg.Done()
			if err := trigger.Run(triggerCtx, w.notify); err != nil && triggerCtx.Err() == nil {
				triggerErrs <- err
			}
		}(trigger)
	}

	shutdown := func() {
		w.stopCurrent()
		cancelTriggers()
		wg.Wait()
		close(w.stopped)
	}

	w.startBuild(ctx, "Initial build")

	for {
		select {
		case <-ctx.Done():
			shutdown()
			return nil
		case err := <-triggerErrs:
			shutdown()
			return fmt.Errorf("watch trigger: %w", err)
		case reason := <-w.changes:
			w.startBuild(ctx, reason)
		case done := <-w.done:
			w.finish(done)
		}
	}
}

// notify queues a rebuild. Events arriving while one is already queued are
// merged into it.
func (w *Watcher) notify(reason string) {
	select {
	case w.changes <- reason:
	default:
	}
}

func (w *Watcher) setState(state State) {
	if w.state == state {
		return
	}
	w.state = state
	if w.OnStateChange != nil {
		w.OnStateChange(state)
	}
}

func (w *Watcher) startBuild(ctx context.Context, reason string) {
	if w.current != nil {
		log.Printf("Cancelling running build")
		w.stopCurrent()
	}

	fmt.Printf("📚 %s, rebuilding...\n", reason)

	build, err := w.builder.Start(ctx)
	if err != nil {
		log.Printf("✗ Failed to start build: %v", err)
		w.setState(StateIdle)
		return
	}

	w.nextID++
	running := &runningBuild{
		id:     w.nextID,
		build:  build,
		exited: make(chan struct{}),
	}
	w.current = running
	w.setState(StateBuilding)

	go func() {
		err := running.build.Wait()
		close(running.exited)
		select {
		case w.done <- buildDone{id: running.id, err: err}:
		case <-w.stopped:
		}
	}()
}

// stopCurrent kills the running build, if any, and waits for it to exit.
func (w *Watcher) stopCurrent() {
	if w.current == nil {
		return
	}
	w.current.build.Cancel()
	<-w.current.exited
	w.current = nil
	w.setState(StateIdle)
}

func (w *Watcher) finish(done buildDone) {
	// Completion of a build that was already replaced
	if w.current == nil || w.current.id != done.id {
		return
	}
	w.current = nil
	w.setState(StateIdle)

	if done.err == nil {
		fmt.Printf("✓ Build complete\n\n")
		return
	}

	var exitErr interface{ ExitCode() int }
	if errors.As(done.err, &exitErr) {
		log.Printf("✗ Build failed with code %d\n", exitErr.ExitCode())
		return
	}
	log.Printf("✗ Build failed: %v\n", done.err)
}
