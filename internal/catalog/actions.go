package catalog

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Actions abstracts the desktop side effects the command catalog can
// trigger. Implementations must be safe for concurrent use.
type Actions interface {
	// OpenURL opens url in the user's default browser.
	OpenURL(url string) error

	// LaunchApp starts the named application. Recognised names are
	// "editor" and "calculator".
	LaunchApp(name string) error
}

// ExecActions performs desktop actions by spawning the platform's native
// commands. Processes are started detached; the catalog never waits for
// them.
type ExecActions struct{}

var _ Actions = ExecActions{}

// OpenURL opens url with the platform's URL handler.
func (ExecActions) OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("catalog: open url: %w", err)
	}
	return nil
}

// LaunchApp starts the platform's counterpart of the named application.
func (ExecActions) LaunchApp(name string) error {
	app, ok := platformApp(name)
	if !ok {
		return fmt.Errorf("catalog: unknown application %q", name)
	}
	if err := exec.Command(app).Start(); err != nil {
		return fmt.Errorf("catalog: launch %s: %w", name, err)
	}
	return nil
}

func platformApp(name string) (string, bool) {
	windows := runtime.GOOS == "windows"
	switch name {
	case "editor":
		if windows {
			return "notepad.exe", true
		}
		return "gedit", true
	case "calculator":
		if windows {
			return "calc.exe", true
		}
		return "gnome-calculator", true
	}
	return "", false
}

// NopActions ignores every action. Useful in tests and headless runs.
type NopActions struct{}

var _ Actions = NopActions{}

func (NopActions) OpenURL(string) error   { return nil }
func (NopActions) LaunchApp(string) error { return nil }
