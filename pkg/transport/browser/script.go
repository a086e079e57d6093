package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// shimTemplate installs window.tabbridge. It is parameterised with a JSON
// object so no value is spliced into the source as raw text.
const shimTemplate = `(() => {
  const cfg = %s;
  if (window.tabbridge) return;
  let open = false;
  const bridge = {
    onmessage: null,
    get channelOpen() { return open; },
    postMessage(data) {
      if (!open) return false;
      window[cfg.message](String(data));
      return true;
    },
    deepLink(uri) {
      window[cfg.deepLink](String(uri));
    },
    open() {
      open = true;
      window[cfg.ready]();
      return true;
    },
    deliver(data) {
      if (!open) return false;
      const fn = bridge.onmessage;
      if (typeof fn === "function") fn(data);
      window.dispatchEvent(new MessageEvent("message", { data, origin: "tabbridge" }));
      return true;
    },
  };
  Object.defineProperty(window, "tabbridge", { value: bridge });

  if (window === window.top) {
    document.addEventListener("visibilitychange", () => {
      window[cfg.visibility](document.visibilityState);
    });
    if (cfg.themeColor) {
      document.addEventListener("DOMContentLoaded", () => {
        let meta = document.querySelector('meta[name="theme-color"]');
        if (!meta) {
          meta = document.createElement("meta");
          meta.name = "theme-color";
          document.head.appendChild(meta);
        }
        meta.content = cfg.themeColor;
      });
    }
  }

  if (cfg.scheme) {
    document.addEventListener("click", (e) => {
      const a = e.target && e.target.closest ? e.target.closest("a[href]") : null;
      if (!a) return;
      const href = a.getAttribute("href") || "";
      if (href.toLowerCase().startsWith(cfg.scheme + ":")) {
        e.preventDefault();
        bridge.deepLink(href);
      }
    }, true);
  }
})();`

type shimConfig struct {
	Visibility string `json:"visibility"`
	Message    string `json:"message"`
	DeepLink   string `json:"deepLink"`
	Ready      string `json:"ready"`
	Scheme     string `json:"scheme"`
	ThemeColor string `json:"themeColor,omitempty"`
}

// initScript renders the page shim for the given deep-link scheme and
// ARGB toolbar color.
func initScript(scheme string, argb uint32) (string, error) {
	cfg, err := json.Marshal(shimConfig{
		Visibility: bindingVisibility,
		Message:    bindingMessage,
		DeepLink:   bindingDeepLink,
		Ready:      bindingChannelReady,
		Scheme:     strings.ToLower(scheme),
		ThemeColor: cssColor(argb),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode shim config: %w", err)
	}
	return fmt.Sprintf(shimTemplate, cfg), nil
}

// Evaluated against the page by RequestChannel and PostMessage.
const (
	openChannelScript = `() => window.tabbridge ? window.tabbridge.open() : false`
	deliverScript     = `(data) => window.tabbridge ? window.tabbridge.deliver(data) : false`
)

// cssColor converts an ARGB value to a CSS color. Fully opaque colors use
// #RRGGBB, anything else rgba(). Zero yields an empty string.
func cssColor(argb uint32) string {
	if argb == 0 {
		return ""
	}
	a := argb >> 24
	r := (argb >> 16) & 0xFF
	g := (argb >> 8) & 0xFF
	b := argb & 0xFF
	if a == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", r, g, b, float64(a)/255)
}
