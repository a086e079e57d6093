package types

import "fmt"

// EventKind identifies a navigation or tab lifecycle event reported by an
// overlay browser.
type EventKind int

const (
	EventUnknown             EventKind = iota // EventUnknown is a platform code with no known meaning.
	EventNavigationStarted                    // EventNavigationStarted indicates the page started loading.
	EventNavigationFinished                   // EventNavigationFinished indicates the page finished loading.
	EventNavigationFailed                     // EventNavigationFailed indicates the page failed to load.
	EventNavigationAborted                    // EventNavigationAborted indicates the load was aborted.
	EventTabShown                             // EventTabShown indicates the tab became visible.
	EventTabHidden                            // EventTabHidden indicates the tab is open but not visible.
	EventTabOpened                            // EventTabOpened indicates the tab was opened.
	EventTabClosed                            // EventTabClosed indicates the tab was closed.
	EventMessageChannelReady                  // EventMessageChannelReady indicates the message channel is usable.
)

var eventKindNames = map[EventKind]string{
	EventNavigationStarted:   "NavigationStarted",
	EventNavigationFinished:  "NavigationFinished",
	EventNavigationFailed:    "NavigationFailed",
	EventNavigationAborted:   "NavigationAborted",
	EventTabShown:            "TabShown",
	EventTabHidden:           "TabHidden",
	EventTabOpened:           "TabOpened",
	EventTabClosed:           "TabClosed",
	EventMessageChannelReady: "MessageChannelReady",
}

// Platform navigation codes as delivered by the overlay browser callback.
const (
	CodeNavigationStarted  = 1
	CodeNavigationFinished = 2
	CodeNavigationFailed   = 3
	CodeNavigationAborted  = 4
	CodeTabShown           = 5
	CodeTabHidden          = 6
)

var kindFromCode = map[int]EventKind{
	CodeNavigationStarted:  EventNavigationStarted,
	CodeNavigationFinished: EventNavigationFinished,
	CodeNavigationFailed:   EventNavigationFailed,
	CodeNavigationAborted:  EventNavigationAborted,
	CodeTabShown:           EventTabShown,
	CodeTabHidden:          EventTabHidden,
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// NavigationEvent pairs an event kind with the URL it refers to. Code keeps
// the raw platform code so unknown events can still be reported.
type NavigationEvent struct {
	Kind EventKind
	Code int
	URL  string
}

// NavigationEventFromCode maps a platform navigation code to an event.
func NavigationEventFromCode(code int, url string) NavigationEvent {
	kind, ok := kindFromCode[code]
	if !ok {
		kind = EventUnknown
	}
	return NavigationEvent{Kind: kind, Code: code, URL: url}
}

// Name returns the name reported to observers, e.g. "TabHidden" or "Unknown(42)".
func (e NavigationEvent) Name() string {
	if e.Kind == EventUnknown {
		return fmt.Sprintf("Unknown(%d)", e.Code)
	}
	return e.Kind.String()
}

// ResultCode is the outcome of posting a message to the page.
type ResultCode int

const (
	ResultSuccess               ResultCode = 0
	ResultFailureDisallowed     ResultCode = -1
	ResultFailureRemoteError    ResultCode = -2
	ResultFailureMessagingError ResultCode = -3
)

func (r ResultCode) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailureDisallowed:
		return "disallowed"
	case ResultFailureRemoteError:
		return "remote_error"
	case ResultFailureMessagingError:
		return "messaging_error"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}
