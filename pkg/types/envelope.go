package types

// EnvelopeVersion is the current version of the Envelope layout.
const EnvelopeVersion = 1

// EnvelopeType defines what an Envelope carries.
type EnvelopeType string

const (
	EnvelopeNavigation          EnvelopeType = "navigation"           // EnvelopeNavigation carries a NavigationEvent.
	EnvelopeDeepLink            EnvelopeType = "deep_link"            // EnvelopeDeepLink carries a deep-link URI in URL.
	EnvelopePostMessage         EnvelopeType = "post_message"         // EnvelopePostMessage carries a page message in Payload.
	EnvelopeServiceConnected    EnvelopeType = "service_connected"    // EnvelopeServiceConnected reports the transport (re)connected.
	EnvelopeServiceDisconnected EnvelopeType = "service_disconnected" // EnvelopeServiceDisconnected reports the transport went away.
)

// Envelope is the message a transport hands across the boundary into the
// bridge. It holds only primitive values so it can be produced from any
// goroutine and copied freely.
type Envelope struct {
	// Version is the layout version, EnvelopeVersion for envelopes built here.
	Version int

	// Type indicates which of the remaining fields are meaningful.
	Type EnvelopeType

	// Event is set for navigation envelopes.
	Event NavigationEvent

	// URL is the deep-link URI for deep-link envelopes.
	URL string

	// Payload is the page message for post-message envelopes.
	Payload string
}

// NewNavigationEnvelope wraps a platform navigation code.
func NewNavigationEnvelope(code int, url string) Envelope {
	return Envelope{
		Version: EnvelopeVersion,
		Type:    EnvelopeNavigation,
		Event:   NavigationEventFromCode(code, url),
	}
}

// NewEventEnvelope wraps an event that has no platform code, such as
// EventTabOpened or EventMessageChannelReady.
func NewEventEnvelope(kind EventKind, url string) Envelope {
	return Envelope{
		Version: EnvelopeVersion,
		Type:    EnvelopeNavigation,
		Event:   NavigationEvent{Kind: kind, URL: url},
	}
}

// NewDeepLinkEnvelope wraps an incoming deep-link URI.
func NewDeepLinkEnvelope(uri string) Envelope {
	return Envelope{
		Version: EnvelopeVersion,
		Type:    EnvelopeDeepLink,
		URL:     uri,
	}
}

// NewPostMessageEnvelope wraps a message posted by the page.
func NewPostMessageEnvelope(message string) Envelope {
	return Envelope{
		Version: EnvelopeVersion,
		Type:    EnvelopePostMessage,
		Payload: message,
	}
}

// NewServiceEnvelope reports a transport connection change.
func NewServiceEnvelope(connected bool) Envelope {
	t := EnvelopeServiceDisconnected
	if connected {
		t = EnvelopeServiceConnected
	}
	return Envelope{Version: EnvelopeVersion, Type: t}
}
