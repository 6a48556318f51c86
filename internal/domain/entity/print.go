package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/enum"
	"gorm.io/gorm"
)

// DeviceTarget identifies where a strategy sends its payload.
type DeviceTarget struct {
	VendorID    uint16 `json:"vendorId,omitempty"`
	ProductID   uint16 `json:"productId,omitempty"`
	DevicePath  string `json:"devicePath,omitempty"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
	PrinterName string `json:"printerName,omitempty"`
}

func (t DeviceTarget) String() string {
	switch {
	case t.VendorID != 0 || t.ProductID != 0:
		return fmt.Sprintf("usb:%04x:%04x", t.VendorID, t.ProductID)
	case t.DevicePath != "":
		return "usb:" + t.DevicePath
	case t.Host != "":
		return fmt.Sprintf("tcp:%s:%d", t.Host, t.Port)
	case t.PrinterName != "":
		return "printer:" + t.PrinterName
	default:
		return "printer:(system default)"
	}
}

// PrintAttemptResult records the outcome of one strategy.
type PrintAttemptResult struct {
	Strategy   enum.PrintStrategy `json:"strategy"`
	Success    bool               `json:"success"`
	Target     string             `json:"target,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Warning    string             `json:"warning,omitempty"`
	DurationMS int64              `json:"durationMs"`
	Err        error              `json:"-"`
}

// PrintResult is the outcome of a print request.
type PrintResult struct {
	Success      bool                 `json:"success"`
	StrategyUsed string               `json:"strategyUsed,omitempty"`
	Error        string               `json:"error,omitempty"`
	Attempts     []PrintAttemptResult `json:"attempts"`
	Err          error                `json:"-"`
}

// PrintJob is the persisted history row of a print request.
type PrintJob struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Kind         string    `gorm:"size:20;not null;index" json:"kind"`
	Reference    string    `gorm:"size:100;index" json:"reference"`
	Success      bool      `gorm:"not null" json:"success"`
	StrategyUsed string    `gorm:"size:30" json:"strategy_used,omitempty"`
	Error        string    `gorm:"type:text" json:"error,omitempty"`
	Attempts     string    `gorm:"type:text" json:"attempts"`
	Total        float64   `gorm:"type:decimal(12,2)" json:"total"`
	ServedBy     string    `gorm:"size:100" json:"served_by,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new print job
func (j *PrintJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
