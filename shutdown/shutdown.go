// Package shutdown coordinates graceful process teardown through named hooks.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

type hook struct {
	name string
	fn   func()
}

var (
	mut     sync.Mutex     //nolint:gochecknoglobals
	hooks   []hook         //nolint:gochecknoglobals
	channel chan os.Signal //nolint:gochecknoglobals
)

// BeforeShutdown registers a named function to be called before the
// process exits. Hooks run in reverse registration order, so resources
// acquired late are released first. The top-level context is still
// alive while hooks run, so they can use it to clean up resources.
func BeforeShutdown(name string, fn func()) {
	mut.Lock()
	defer mut.Unlock()

	hooks = append(hooks, hook{name: name, fn: fn})
}

// Shutdown triggers the shutdown process. Usually the shutdown is
// kicked off by a signal handler, but this function can be used to
// trigger it programmatically.
func Shutdown() {
	mut.Lock()
	ch := channel
	mut.Unlock()

	if ch != nil {
		ch <- os.Interrupt
	}
}

// SetupHandler installs a handler for SIGINT and SIGTERM. It returns a
// context derived from parent that is canceled once all registered
// hooks have drained.
func SetupHandler(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	mut.Lock()
	channel = make(chan os.Signal, 1)
	ch := channel
	mut.Unlock()

	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-ch

		slog.Warn("Received " + sig.String() + ", shutting down...")
		signal.Stop(ch)

		mut.Lock()
		channel = nil
		mut.Unlock()

		drain()
		cancel()
	}()

	return ctx
}

// drain runs registered hooks newest-first and clears the registry.
// Hooks run outside the lock so they may register further hooks
// without deadlocking; late additions are picked up by a later drain.
func drain() {
	mut.Lock()
	pending := hooks
	hooks = nil
	mut.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		slog.Debug("Running shutdown hook", "name", pending[i].name)
		pending[i].fn()
	}
}
