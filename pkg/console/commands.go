package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

// ErrQuit is returned by Execute for the quit and exit commands.
var ErrQuit = errors.New("quit")

// Commander runs console commands against one session.
type Commander struct {
	bridge  *bridge.Bridge
	session *bridge.Session

	// copyText writes to the system clipboard
	copyText func(string) error
}

// NewCommander creates a commander for session.
func NewCommander(b *bridge.Bridge, session *bridge.Session) *Commander {
	return &Commander{
		bridge:   b,
		session:  session,
		copyText: clipboard.WriteAll,
	}
}

// Help lists the available commands.
func Help() string {
	return strings.Join([]string{
		"open <url> [#color]  open a page in the overlay",
		"close                close the overlay",
		"channel <origin>     request a message channel",
		"send <message>       post a message to the page",
		"deeplink <uri>       handle a deep link as if the page raised it",
		"status               show the session state",
		"copy                 copy the last deep-link parameters",
		"help                 show this list",
		"quit                 exit",
	}, "\n")
}

// Execute runs one command line and returns its output.
func (c *Commander) Execute(ctx context.Context, line string) (string, error) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return "", nil

	case "open":
		url, color, _ := strings.Cut(arg, " ")
		if url == "" {
			return "", errors.New("usage: open <url> [#color]")
		}
		if !c.session.Open(ctx, url, strings.TrimSpace(color)) {
			return "", fmt.Errorf("could not open %s", url)
		}
		return "opened " + url, nil

	case "close":
		c.session.Close(ctx)
		return "closed", nil

	case "channel":
		if arg == "" {
			return "", errors.New("usage: channel <origin>")
		}
		if !c.session.RequestChannel(ctx, arg) {
			return "", fmt.Errorf("channel request for %s was not started", arg)
		}
		return "requesting channel for " + arg, nil

	case "send":
		if arg == "" {
			return "", errors.New("usage: send <message>")
		}
		if !c.session.SendMessage(ctx, arg) {
			return "", errors.New("message not sent")
		}
		return "sent", nil

	case "deeplink":
		if !c.bridge.HandleDeepLinkURI(arg) {
			return "", fmt.Errorf("not a deep link: %q", arg)
		}
		return "", nil

	case "status":
		st, err := c.session.Status(ctx)
		if err != nil {
			return "", err
		}
		return FormatStatus(st), nil

	case "copy":
		_, params := c.session.LastDeepLink()
		if params == "" {
			return "", errors.New("no deep link received yet")
		}
		if err := c.copyText(params); err != nil {
			return "", fmt.Errorf("clipboard: %w", err)
		}
		return "copied " + params, nil

	case "help", "?":
		return Help(), nil

	case "quit", "exit":
		return "", ErrQuit

	default:
		return "", fmt.Errorf("unknown command %q, try help", cmd)
	}
}

// FormatStatus renders a session status as aligned key/value lines.
func FormatStatus(st bridge.Status) string {
	rows := [][2]string{
		{"session", st.ID},
		{"state", st.State.String()},
		{"url", st.URL},
		{"color", st.ToolbarColor},
		{"channel", st.ChannelPhase.String()},
		{"ready", fmt.Sprintf("%v", st.ChannelReady)},
		{"attempts", fmt.Sprintf("%d", st.Attempts)},
	}
	if st.PendingOrigin != "" {
		rows = append(rows, [2]string{"origin", st.PendingOrigin})
	}
	if st.LastEvent != "" {
		rows = append(rows, [2]string{"event", st.LastEvent})
	}
	if st.LastDeepLinkAction != "" {
		rows = append(rows, [2]string{"deeplink", st.LastDeepLinkAction + " " + st.LastDeepLinkParams})
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-9s %s", r[0], r[1])
	}
	return b.String()
}
