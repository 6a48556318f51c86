package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PrintStrategy identifies a transport in the print fallback chain
type PrintStrategy int

const (
	PrintStrategyUSBRaw        PrintStrategy = 0
	PrintStrategyNetworkRaw    PrintStrategy = 1
	PrintStrategyOSRawSpool    PrintStrategy = 2
	PrintStrategyOSPrintDialog PrintStrategy = 3
)

var printStrategyNames = [...]string{"USBRaw", "NetworkRaw", "OSRawSpool", "OSPrintDialog"}

func (s PrintStrategy) String() string {
	if s < 0 || int(s) >= len(printStrategyNames) {
		return fmt.Sprintf("PrintStrategy(%d)", int(s))
	}
	return printStrategyNames[s]
}

// ParsePrintStrategy accepts canonical names and the short config aliases
// usb, network, spool and dialog.
func ParsePrintStrategy(s string) (PrintStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "usb", "usbraw":
		return PrintStrategyUSBRaw, nil
	case "network", "networkraw", "tcp":
		return PrintStrategyNetworkRaw, nil
	case "spool", "osrawspool", "raw":
		return PrintStrategyOSRawSpool, nil
	case "dialog", "osprintdialog", "pdf":
		return PrintStrategyOSPrintDialog, nil
	}
	return 0, fmt.Errorf("unknown print strategy %q", s)
}

func (s PrintStrategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PrintStrategy) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PrintStrategy(i)
		return nil
	}
	parsed, err := ParsePrintStrategy(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PrintStrategy) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PrintStrategy) Scan(value interface{}) error {
	if value == nil {
		*s = PrintStrategyUSBRaw
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PrintStrategy(v)
	case int:
		*s = PrintStrategy(v)
	}
	return nil
}
