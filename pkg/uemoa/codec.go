// Package uemoa implements the interoperable QR payment format of the West
// African monetary union (BCEAO payment interface). Payloads follow the
// EMVCo merchant-presented TLV syntax with a CRC-16 trailer; images are PNG
// renderings of the payload.
package uemoa

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// QR variant tags carried in payloads and persisted artifact metadata.
const (
	TypeStatic  = "STATIC"
	TypeDynamic = "DYNAMIC"
)

var (
	ErrInvalidPaymentData = errors.New("invalid payment data")
	ErrInvalidPayload     = errors.New("invalid QR payload")
)

// MerchantInfo identifies the payee encoded into a QR payload.
type MerchantInfo struct {
	Name         string
	City         string
	CountryCode  string // ISO 3166-1 alpha-2
	CategoryCode string // ISO 18245 MCC, 4 digits
	Alias        string // merchant alias in the payment system (IFU for liquidations)
}

// PaymentData is the codec input and decode output.
type PaymentData struct {
	Merchant      MerchantInfo
	Amount        decimal.Decimal
	Currency      string // ISO 4217 alpha code, e.g. "XOF"
	TransactionID string // required for dynamic payloads
	Type          string // STATIC or DYNAMIC
}

// Codec encodes merchant payment data into a scannable payload and back.
// The liquidation orchestrator depends on this interface only, so tests can
// substitute a deterministic fake.
type Codec interface {
	EncodeStatic(data PaymentData) (string, error)
	EncodeDynamic(data PaymentData) (string, error)
	RenderImage(data PaymentData) (string, error)
	Decode(payload string) (PaymentData, error)
}

func (d PaymentData) validate() error {
	if strings.TrimSpace(d.Merchant.Name) == "" {
		return errors.Join(ErrInvalidPaymentData, errors.New("merchant name is required"))
	}
	if strings.TrimSpace(d.Merchant.City) == "" {
		return errors.Join(ErrInvalidPaymentData, errors.New("merchant city is required"))
	}
	if len(d.Merchant.CountryCode) != 2 {
		return errors.Join(ErrInvalidPaymentData, errors.New("country code must be 2 characters"))
	}
	if !d.Amount.IsPositive() {
		return errors.Join(ErrInvalidPaymentData, errors.New("amount must be positive"))
	}
	return nil
}
