package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

// chdir changes the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Load()

	if cfg.Printer.Name != "POS-80" {
		t.Fatalf("printer name = %q", cfg.Printer.Name)
	}
	if cfg.Printer.Port != 9100 {
		t.Fatalf("printer port = %d", cfg.Printer.Port)
	}
	if cfg.Printer.ColumnWidth != 48 {
		t.Fatalf("column width = %d", cfg.Printer.ColumnWidth)
	}
	want := []string{"usb", "network", "spool", "dialog"}
	if !reflect.DeepEqual(cfg.Printer.Strategies, want) {
		t.Fatalf("strategies = %v", cfg.Printer.Strategies)
	}
	if cfg.Printer.NetworkTimeout != 5*time.Second {
		t.Fatalf("network timeout = %v", cfg.Printer.NetworkTimeout)
	}
	if cfg.Store.Currency != "Rs" || cfg.Store.Name != "Creative Hands" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("THERMAL_PRINTER_HOST", "192.168.1.50")
	t.Setenv("THERMAL_PRINTER_PORT", "9101")
	t.Setenv("PRINTER_STRATEGIES", " network , spool ")
	t.Setenv("PRINTER_SPOOL_TIMEOUT", "2s")
	t.Setenv("PRINTER_RAW_FORMAT", "TEXT")

	cfg := Load()

	if cfg.Printer.Host != "192.168.1.50" || cfg.Printer.Port != 9101 {
		t.Fatalf("unexpected network target %s:%d", cfg.Printer.Host, cfg.Printer.Port)
	}
	if !reflect.DeepEqual(cfg.Printer.Strategies, []string{"network", "spool"}) {
		t.Fatalf("strategies = %v", cfg.Printer.Strategies)
	}
	if cfg.Printer.SpoolTimeout != 2*time.Second {
		t.Fatalf("spool timeout = %v", cfg.Printer.SpoolTimeout)
	}
	if cfg.Printer.RawFormat != "text" {
		t.Fatalf("raw format = %q", cfg.Printer.RawFormat)
	}
}
