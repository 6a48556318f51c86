package printer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Spooler hands jobs to the operating system print spooler through a temp file.
type Spooler struct {
	runner       CommandRunner
	goos         string
	tempDir      string
	cleanupDelay time.Duration
	afterFunc    func(time.Duration, func())
	logger       *slog.Logger
}

// SpoolerConfig configures a Spooler. Zero values pick the host defaults.
type SpoolerConfig struct {
	Runner       CommandRunner
	GOOS         string
	TempDir      string
	CleanupDelay time.Duration
	// AfterFunc schedules temp file removal; defaults to time.AfterFunc.
	AfterFunc func(time.Duration, func())
	Logger    *slog.Logger
}

func NewSpooler(cfg SpoolerConfig) *Spooler {
	s := &Spooler{
		runner:       cfg.Runner,
		goos:         cfg.GOOS,
		tempDir:      cfg.TempDir,
		cleanupDelay: cfg.CleanupDelay,
		afterFunc:    cfg.AfterFunc,
		logger:       cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.runner == nil {
		s.runner = ExecRunner{Logger: s.logger}
	}
	if s.goos == "" {
		s.goos = runtime.GOOS
	}
	if s.cleanupDelay <= 0 {
		s.cleanupDelay = 30 * time.Second
	}
	if s.afterFunc == nil {
		s.afterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return s
}

// SubmitRaw sends bytes unmodified to the named queue ("" = system default).
func (s *Spooler) SubmitRaw(ctx context.Context, printerName string, data []byte) error {
	return s.submit(ctx, printerName, data, ".prn", true)
}

// SubmitDocument prints a formatted document (e.g. PDF) through the driver.
func (s *Spooler) SubmitDocument(ctx context.Context, printerName string, data []byte, ext string) error {
	return s.submit(ctx, printerName, data, ext, false)
}

func (s *Spooler) submit(ctx context.Context, printerName string, data []byte, ext string, raw bool) error {
	name, args, err := s.command(printerName, raw)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(s.tempDir, "posprint-*"+ext)
	if err != nil {
		return fmt.Errorf("printer: create spool file: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("printer: write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("printer: close spool file: %w", err)
	}

	for i, a := range args {
		args[i] = strings.ReplaceAll(a, "{file}", path)
	}

	_, stderr, err := s.runner.Run(ctx, name, args...)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			s.remove(path)
			return fmt.Errorf("%w: %s unavailable: %v", ErrNotFound, name, err)
		}
		s.scheduleRemove(path)
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %v", ErrTimeout, name, ctx.Err())
		}
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("printer: spool to %q failed: %s", printerName, msg)
	}

	s.scheduleRemove(path)
	return nil
}

// command builds the spool command line; "{file}" stands for the temp file.
func (s *Spooler) command(printerName string, raw bool) (string, []string, error) {
	if s.goos == "windows" {
		if raw {
			if printerName == "" {
				return "", nil, fmt.Errorf("%w: raw spooling on windows needs a printer name", ErrNotFound)
			}
			return "cmd", []string{"/C", "copy", "/B", "{file}", `\\localhost\` + printerName}, nil
		}
		script := `Start-Process -FilePath '{file}' -Verb Print -Wait`
		if printerName != "" {
			script = fmt.Sprintf(`Start-Process -FilePath '{file}' -Verb PrintTo -ArgumentList '"%s"' -Wait`, strings.ReplaceAll(printerName, "'", "''"))
		}
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
	}

	var args []string
	if printerName != "" {
		args = append(args, "-d", printerName)
	}
	if raw {
		args = append(args, "-o", "raw")
	}
	args = append(args, "{file}")
	return "lp", args, nil
}

func (s *Spooler) scheduleRemove(path string) {
	s.afterFunc(s.cleanupDelay, func() { s.remove(path) })
}

func (s *Spooler) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove spool file", "path", path, "error", err)
	}
}
