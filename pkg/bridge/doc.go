// Package bridge connects a host application to an overlay browser tab.
//
// A Bridge owns one dispatch loop. Transports report navigation, deep-link
// and page-message events from whatever goroutine they run on by calling
// Deliver; the bridge re-posts each event onto the loop, where all Session
// state and channel retry state is read and written. Observer callbacks are
// made on the loop as well, in the order events were delivered.
//
// The overlay API carries no per-session context in its callbacks, so the
// bridge routes every event to the single active Session held by a Registry.
// Opening a Session makes it active and supersedes any previous one. Only one
// overlay session is supported at a time.
//
// Basic usage:
//
//	b, err := bridge.New(transport,
//	    bridge.WithObserver(obs),
//	    bridge.WithLauncher(browser.NewSystemLauncher()),
//	)
//	if err != nil {
//	    return err
//	}
//	b.Start()
//	defer b.Shutdown(context.Background())
//
//	s := b.NewSession()
//	if s.Open(ctx, "https://example.com", "#112233") {
//	    s.RequestChannel(ctx, "https://example.com")
//	}
//
// Session and Bridge methods that take a context wait for the loop, so they
// must not be called from inside Observer callbacks.
package bridge
