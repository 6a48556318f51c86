package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

var (
	// ErrNotFound is returned when the addressed device does not exist.
	ErrNotFound = errors.New("printer: device not found")
	// ErrTimeout is returned when a transmission outlives its context.
	ErrTimeout = errors.New("printer: transmission timed out")
)

// Printer is the interface for sending raw bytes to a thermal printer.
type Printer interface {
	// Print sends raw bytes to the printer.
	Print(ctx context.Context, data []byte) error
	// Close releases the printer connection/handle.
	Close() error
	// IsConnected returns true if the printer is reachable.
	IsConnected() bool
	// Describe returns a human readable target, e.g. "usb:/dev/usb/lp0".
	Describe() string
}

// --- USB Printer (writes to device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(ctx context.Context, data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, p.path)
		}
		return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
	}

	// usblp writes block while the printer is out of paper; give up on ctx
	// and let the close unblock the pending write.
	done := make(chan error, 1)
	go func() {
		_, err := f.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		f.Close()
		if err != nil {
			return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
		}
		return nil
	case <-ctx.Done():
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrTimeout, p.path, ctx.Err())
	}
}

func (p *usbPrinter) Close() error {
	return nil // USB printer opens/closes per print job
}

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *usbPrinter) Describe() string {
	return "usb:" + p.path
}

// --- Network Printer (dials TCP, e.g. 192.168.1.100:9100) ---

type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter creates a printer that connects via TCP.
// Address should include port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string, timeout time.Duration) Printer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &networkPrinter{
		address: address,
		timeout: timeout,
	}
}

// NetworkAddress joins host and port, defaulting the port to 9100.
func NetworkAddress(host string, port int) string {
	if port <= 0 {
		port = 9100
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: connect %s: %v", ErrTimeout, p.address, err)
		}
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetWriteDeadline(deadline)

	_, err = conn.Write(data)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return fmt.Errorf("%w: write %s", ErrTimeout, p.address)
		}
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error {
	return nil // Network printer opens/closes per print job
}

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *networkPrinter) Describe() string {
	return "tcp:" + p.address
}
