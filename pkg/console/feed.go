package console

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

// Feed is a bridge.Observer that renders each notification as one line
// and passes it to emit. emit is called on the bridge loop and must not
// block.
type Feed struct {
	emit  func(line string)
	color bool
}

var _ bridge.Observer = (*Feed)(nil)

// NewFeed creates a feed. With color set, deep-link parameters are syntax
// highlighted for a 256-color terminal.
func NewFeed(emit func(line string), color bool) *Feed {
	return &Feed{emit: emit, color: color}
}

// OnNavigationEvent renders a navigation or lifecycle event.
func (f *Feed) OnNavigationEvent(kind, url string) {
	line := tagStyle.Render("event") + " " + kind
	if url != "" {
		line += " " + urlStyle.Render(url)
	}
	f.emit(line)
}

// OnDeepLink renders an accepted deep link with its parameters.
func (f *Feed) OnDeepLink(action, paramsJSON string) {
	f.emit(tagStyle.Render("deeplink") + " " + action + " " + f.highlightJSON(paramsJSON))
}

// OnPostMessage renders a message the page posted.
func (f *Feed) OnPostMessage(message, origin string) {
	line := tagStyle.Render("message") + " " + messageStyle.Render(message)
	if origin != "" {
		line += " " + urlStyle.Render("from "+origin)
	}
	f.emit(line)
}

// OnChannelFailed reports a channel request that ran out of attempts.
func (f *Feed) OnChannelFailed(origin string, attempts int) {
	f.emit(tagStyle.Render("channel") + " " +
		errorStyle.Render(fmt.Sprintf("gave up on %s after %d attempts", origin, attempts)))
}

func (f *Feed) highlightJSON(s string) string {
	if !f.color {
		return s
	}
	var b strings.Builder
	if err := quick.Highlight(&b, s, "json", "terminal256", "monokai"); err != nil {
		return s
	}
	return b.String()
}
