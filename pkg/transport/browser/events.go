package browser

import (
	"strings"

	"github.com/entrhq/tabbridge/pkg/bridge"
	"github.com/entrhq/tabbridge/pkg/types"
)

// failureKind classifies a failed main-frame navigation from the error text
// Chromium reports.
func failureKind(failure string) types.EventKind {
	if strings.Contains(failure, "net::ERR_ABORTED") {
		return types.EventNavigationAborted
	}
	return types.EventNavigationFailed
}

// visibilityKind maps document.visibilityState to a tab event.
func visibilityKind(state string) (types.EventKind, bool) {
	switch state {
	case "hidden":
		return types.EventTabHidden, true
	case "visible":
		return types.EventTabShown, true
	default:
		return types.EventUnknown, false
	}
}

// sameOrigin reports whether pageURL belongs to the already normalized origin.
func sameOrigin(pageURL, origin string) bool {
	got, err := bridge.NormalizeOrigin(pageURL)
	return err == nil && got == origin
}

// bindingArg returns the first binding argument as a string.
func bindingArg(args []interface{}) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}
