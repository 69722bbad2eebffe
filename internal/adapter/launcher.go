package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens catalog pages and artwork in an external program
type Launcher struct {
	command string   // configured opener command, empty for system default
	args    []string // additional arguments for the opener
	logger  *slog.Logger
	start   func(name string, args ...string) error
}

// NewLauncher creates a new Launcher
func NewLauncher(cfg LauncherConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: cfg.Command,
		args:    cfg.Args,
		logger:  logger,
		start:   startCommand,
	}
}

// startCommand launches name asynchronously after checking it is on PATH
func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Open opens url in the configured program or the system default handler
func (l *Launcher) Open(url string) error {
	if url == "" {
		return fmt.Errorf("nothing to open")
	}

	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("opening with configured command", "command", l.command, "args", args)
		if err := l.start(l.command, args...); err != nil {
			return fmt.Errorf("failed to run %s: %w", l.command, err)
		}
		return nil
	}

	name, args := defaultOpener(runtime.GOOS, url)
	l.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// defaultOpener returns the system default handler invocation for goos
func defaultOpener(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
