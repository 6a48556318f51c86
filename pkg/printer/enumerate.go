package printer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

// SystemPrinter is a queue known to the operating system spooler.
type SystemPrinter struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
}

// Enumerator lists printers installed on the host.
type Enumerator struct {
	runner CommandRunner
	goos   string
}

func NewEnumerator(runner CommandRunner, goos string) *Enumerator {
	if runner == nil {
		runner = ExecRunner{}
	}
	if goos == "" {
		goos = runtime.GOOS
	}
	return &Enumerator{runner: runner, goos: goos}
}

// List returns installed printers with the system default flagged.
func (e *Enumerator) List(ctx context.Context) ([]SystemPrinter, error) {
	if e.goos == "windows" {
		return e.listWindows(ctx)
	}
	return e.listCUPS(ctx)
}

func (e *Enumerator) listCUPS(ctx context.Context) ([]SystemPrinter, error) {
	out, stderr, err := e.runner.Run(ctx, "lpstat", "-p")
	if err != nil {
		if bytes.Contains(bytes.ToLower(stderr), []byte("no destinations")) {
			return []SystemPrinter{}, nil
		}
		return nil, fmt.Errorf("printer: lpstat -p: %w", err)
	}

	var printers []SystemPrinter
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) >= 2 && fields[0] == "printer" {
			printers = append(printers, SystemPrinter{Name: fields[1]})
		}
	}

	// The default is optional; a missing one is not an error.
	if out, _, err := e.runner.Run(ctx, "lpstat", "-d"); err == nil {
		line := strings.TrimSpace(string(out))
		if i := strings.LastIndex(line, ":"); i >= 0 && strings.HasPrefix(line, "system default destination") {
			def := strings.TrimSpace(line[i+1:])
			for i := range printers {
				if printers[i].Name == def {
					printers[i].IsDefault = true
				}
			}
		}
	}
	if printers == nil {
		printers = []SystemPrinter{}
	}
	return printers, nil
}

type win32Printer struct {
	Name    string `json:"Name"`
	Default bool   `json:"Default"`
}

func (e *Enumerator) listWindows(ctx context.Context) ([]SystemPrinter, error) {
	out, _, err := e.runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command",
		`Get-CimInstance Win32_Printer | Select-Object Name, Default | ConvertTo-Json`)
	if err != nil {
		return nil, fmt.Errorf("printer: Get-CimInstance Win32_Printer: %w", err)
	}

	out = bytes.TrimSpace(out)
	var rows []win32Printer
	switch {
	case len(out) == 0:
	case out[0] == '[':
		if err := json.Unmarshal(out, &rows); err != nil {
			return nil, fmt.Errorf("printer: parse printer list: %w", err)
		}
	default:
		var one win32Printer
		if err := json.Unmarshal(out, &one); err != nil {
			return nil, fmt.Errorf("printer: parse printer list: %w", err)
		}
		rows = append(rows, one)
	}

	printers := make([]SystemPrinter, 0, len(rows))
	for _, r := range rows {
		printers = append(printers, SystemPrinter{Name: r.Name, IsDefault: r.Default})
	}
	return printers, nil
}

// FindPrinter returns the printer whose name matches case-insensitively.
func FindPrinter(printers []SystemPrinter, name string) (SystemPrinter, bool) {
	for _, p := range printers {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return SystemPrinter{}, false
}

// DefaultPrinter returns the printer flagged as the system default.
func DefaultPrinter(printers []SystemPrinter) (SystemPrinter, bool) {
	for _, p := range printers {
		if p.IsDefault {
			return p, true
		}
	}
	return SystemPrinter{}, false
}
