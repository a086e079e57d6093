package browser

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/entrhq/tabbridge/pkg/bridge"
)

// SystemLauncher opens URLs in the desktop's default browser.
type SystemLauncher struct {
	goos string
}

var _ bridge.Launcher = (*SystemLauncher)(nil)

// NewSystemLauncher returns a launcher for the running OS.
func NewSystemLauncher() *SystemLauncher {
	return &SystemLauncher{goos: runtime.GOOS}
}

// Launch starts the platform opener and returns without waiting for the
// browser to exit.
func (l *SystemLauncher) Launch(ctx context.Context, url string) error {
	name, args, err := openCommand(l.goos, url)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

func openCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("no browser opener for %s", goos)
	}
}
