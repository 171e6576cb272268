package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LiquidationStatus enum constants
const (
	StatusPending = "PENDING"
	StatusOverdue = "OVERDUE"
	StatusPaid    = "PAID"
)

// QRType enum constants
const (
	QRTypeStatic  = "STATIC"
	QRTypeDynamic = "DYNAMIC"
	QRTypeP2P     = "P2P"
	QRTypePenalty = "PENALTY"
)

// Liquidation is a single tax/fee obligation owed by a customer, together
// with the QR artifact generated for its payment. The QR sub-state is
// all-or-nothing: an empty QRCodeData means no artifact exists.
type Liquidation struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TaxType    string          `gorm:"type:varchar(128);not null" json:"tax_type"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	IssueDate  time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate    time.Time       `gorm:"type:date;not null" json:"due_date"`
	Status     string          `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"status"` // PENDING, OVERDUE, PAID

	// QR artifact sub-state, stamped by the orchestrator in one atomic update.
	QRCodeData      string           `gorm:"type:text" json:"qr_code_data,omitempty"`
	QRImageBase64   string           `gorm:"type:text" json:"qr_image_base64,omitempty"`
	MerchantChannel string           `gorm:"type:varchar(64)" json:"merchant_channel,omitempty"`
	TransactionID   *string          `gorm:"type:varchar(128);uniqueIndex" json:"transaction_id,omitempty"`
	QRType          string           `gorm:"type:varchar(16);index" json:"qr_type,omitempty"` // STATIC, DYNAMIC, P2P, PENALTY
	QRGeneratedAt   *time.Time       `json:"qr_generated_at,omitempty"`
	PenaltyAmount   *decimal.Decimal `gorm:"type:decimal(18,2)" json:"penalty_amount,omitempty"`
	TotalAmount     *decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_amount,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Liquidation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// HasQRCode reports whether a QR artifact has been generated for this record.
func (l *Liquidation) HasQRCode() bool {
	return strings.TrimSpace(l.QRCodeData) != ""
}

// HasValidQRCode reports whether the QR sub-state carries everything a
// scanner-side consumer needs: payload, type, generation timestamp, merchant
// channel and transaction id. PENALTY artifacts additionally require a
// non-negative penalty and a strictly positive total.
func (l *Liquidation) HasValidQRCode() bool {
	if !l.HasQRCode() {
		return false
	}
	if strings.TrimSpace(l.QRType) == "" || l.QRGeneratedAt == nil {
		return false
	}
	if strings.TrimSpace(l.MerchantChannel) == "" {
		return false
	}
	if l.TransactionID == nil || strings.TrimSpace(*l.TransactionID) == "" {
		return false
	}
	if l.QRType == QRTypePenalty {
		if l.PenaltyAmount == nil || l.PenaltyAmount.IsNegative() {
			return false
		}
		if l.TotalAmount == nil || !l.TotalAmount.IsPositive() {
			return false
		}
	}
	return true
}

// CalculateTotal returns amount plus penalty when a positive penalty is
// present, otherwise the base amount alone.
func (l *Liquidation) CalculateTotal() decimal.Decimal {
	if l.PenaltyAmount != nil && l.PenaltyAmount.IsPositive() {
		return l.Amount.Add(*l.PenaltyAmount)
	}
	return l.Amount
}

// UpdateTotalAmount recomputes and stores the persisted total.
func (l *Liquidation) UpdateTotalAmount() {
	total := l.CalculateTotal()
	l.TotalAmount = &total
}

// ClearQRData wipes the whole QR sub-state, penalty figures included.
func (l *Liquidation) ClearQRData() {
	l.QRCodeData = ""
	l.QRImageBase64 = ""
	l.MerchantChannel = ""
	l.TransactionID = nil
	l.QRType = ""
	l.QRGeneratedAt = nil
	l.PenaltyAmount = nil
	l.TotalAmount = nil
}
