// Package browser implements the overlay transport on a Playwright-driven
// Chromium window, plus a Launcher that falls back to the system browser.
//
// The transport keeps a single page. Page activity is turned into bridge
// envelopes:
//
//   - main-frame navigation requests become NavigationStarted
//   - the page load event becomes NavigationFinished
//   - failed main-frame navigations become NavigationFailed, or
//     NavigationAborted when Chromium reports net::ERR_ABORTED
//   - document visibility changes become TabHidden and TabShown
//   - the page closing becomes TabClosed
//   - the browser disconnecting becomes a service-disconnected envelope
//
// An init script installs window.tabbridge in every document. Pages use it
// to exchange messages once a channel is open and to raise deep links;
// anchors whose href uses the deep-link scheme are intercepted as well.
//
//	window.tabbridge.onmessage = (data) => console.log(data)
//	window.tabbridge.postMessage("ready")
//	window.tabbridge.deepLink("overlaybridge://teleport?x=1&y=2&z=3")
//
// Example:
//
//	t := browser.NewTransport(browser.WithHeadless(false))
//	if err := t.Start(); err != nil {
//		return err
//	}
//	defer t.Shutdown()
//
//	b, err := bridge.New(t, bridge.WithLauncher(browser.NewSystemLauncher()))
package browser
