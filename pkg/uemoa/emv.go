package uemoa

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// EMVCo merchant-presented mode data object IDs.
const (
	idPayloadFormat      = "00"
	idPointOfInitiation  = "01"
	idMerchantAccount    = "26"
	idMerchantCategory   = "52"
	idCurrency           = "53"
	idAmount             = "54"
	idCountryCode        = "58"
	idMerchantName       = "59"
	idMerchantCity       = "60"
	idAdditionalData     = "62"
	idCRC                = "63"
	subAccountSystemID   = "00"
	subAccountAlias      = "01"
	subAdditionalDataRef = "05"

	initiationStatic  = "11"
	initiationDynamic = "12"
)

// EMVCodec is the default Codec implementation. It produces EMVCo-style TLV
// payloads carrying the BCEAO payment-interface account template and renders
// them as base64 PNG images.
type EMVCodec struct {
	systemID  string // globally unique identifier of the payment system
	imageSize int
}

// NewEMVCodec builds a codec bound to the given payment-system identifier
// (e.g. "int.bceao.pi") and square image size in pixels.
func NewEMVCodec(systemID string, imageSize int) *EMVCodec {
	if imageSize <= 0 {
		imageSize = 300
	}
	return &EMVCodec{systemID: systemID, imageSize: imageSize}
}

func (c *EMVCodec) EncodeStatic(data PaymentData) (string, error) {
	return c.encode(data, initiationStatic)
}

func (c *EMVCodec) EncodeDynamic(data PaymentData) (string, error) {
	if strings.TrimSpace(data.TransactionID) == "" {
		return "", fmt.Errorf("%w: dynamic payload requires a transaction reference", ErrInvalidPaymentData)
	}
	return c.encode(data, initiationDynamic)
}

// RenderImage encodes the payload for the requested variant and renders it
// as a base64 PNG.
func (c *EMVCodec) RenderImage(data PaymentData) (string, error) {
	var payload string
	var err error
	if data.Type == TypeDynamic {
		payload, err = c.EncodeDynamic(data)
	} else {
		payload, err = c.EncodeStatic(data)
	}
	if err != nil {
		return "", err
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, c.imageSize)
	if err != nil {
		return "", fmt.Errorf("QR image rendering failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

func (c *EMVCodec) encode(data PaymentData, initiation string) (string, error) {
	if err := data.validate(); err != nil {
		return "", err
	}

	var b tlvBuilder
	b.write(idPayloadFormat, "01")
	b.write(idPointOfInitiation, initiation)

	var account tlvBuilder
	account.write(subAccountSystemID, c.systemID)
	if data.Merchant.Alias != "" {
		account.write(subAccountAlias, data.Merchant.Alias)
	}
	if account.err != nil {
		return "", account.err
	}
	b.write(idMerchantAccount, account.String())

	category := data.Merchant.CategoryCode
	if category == "" {
		category = "0000"
	}
	b.write(idMerchantCategory, category)
	b.write(idCurrency, currencyNumeric(data.Currency))
	b.write(idAmount, data.Amount.String())
	b.write(idCountryCode, data.Merchant.CountryCode)
	b.write(idMerchantName, truncate(data.Merchant.Name, 25))
	b.write(idMerchantCity, truncate(data.Merchant.City, 15))

	if initiation == initiationDynamic && data.TransactionID != "" {
		var additional tlvBuilder
		additional.write(subAdditionalDataRef, truncate(data.TransactionID, 25))
		if additional.err != nil {
			return "", additional.err
		}
		b.write(idAdditionalData, additional.String())
	}
	if b.err != nil {
		return "", b.err
	}

	// CRC is computed over the payload including its own id and length.
	payload := b.String() + idCRC + "04"
	return payload + fmt.Sprintf("%04X", crc16(payload)), nil
}

// Decode parses a TLV payload back into PaymentData, verifying the CRC
// trailer first.
func (c *EMVCodec) Decode(payload string) (PaymentData, error) {
	if len(payload) < 8 {
		return PaymentData{}, fmt.Errorf("%w: payload too short", ErrInvalidPayload)
	}

	body, crc := payload[:len(payload)-4], payload[len(payload)-4:]
	if fmt.Sprintf("%04X", crc16(body)) != strings.ToUpper(crc) {
		return PaymentData{}, fmt.Errorf("%w: CRC mismatch", ErrInvalidPayload)
	}

	// The CRC object's id and length are checksummed but its value is the
	// trailer itself; data objects end before the "6304" header.
	fields, err := parseTLV(payload[:len(payload)-8])
	if err != nil {
		return PaymentData{}, err
	}

	data := PaymentData{
		Merchant: MerchantInfo{
			CategoryCode: fields[idMerchantCategory],
			CountryCode:  fields[idCountryCode],
			Name:         fields[idMerchantName],
			City:         fields[idMerchantCity],
		},
		Currency: currencyAlpha(fields[idCurrency]),
		Type:     TypeStatic,
	}

	if fields[idPointOfInitiation] == initiationDynamic {
		data.Type = TypeDynamic
	}

	if raw := fields[idAmount]; raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return PaymentData{}, fmt.Errorf("%w: bad amount %q", ErrInvalidPayload, raw)
		}
		data.Amount = amount
	}

	if account := fields[idMerchantAccount]; account != "" {
		sub, err := parseTLV(account)
		if err != nil {
			return PaymentData{}, err
		}
		data.Merchant.Alias = sub[subAccountAlias]
	}

	if additional := fields[idAdditionalData]; additional != "" {
		sub, err := parseTLV(additional)
		if err != nil {
			return PaymentData{}, err
		}
		data.TransactionID = sub[subAdditionalDataRef]
	}

	return data, nil
}

// tlvBuilder accumulates data objects and holds the first write error. The
// two-digit length field caps every value at 99 characters.
type tlvBuilder struct {
	sb  strings.Builder
	err error
}

func (b *tlvBuilder) write(id, value string) {
	if b.err != nil {
		return
	}
	if len(value) > 99 {
		b.err = fmt.Errorf("%w: data object %s exceeds 99 characters", ErrInvalidPaymentData, id)
		return
	}
	fmt.Fprintf(&b.sb, "%s%02d%s", id, len(value), value)
}

func (b *tlvBuilder) String() string { return b.sb.String() }

func parseTLV(s string) (map[string]string, error) {
	fields := make(map[string]string)
	for i := 0; i < len(s); {
		if i+4 > len(s) {
			return nil, fmt.Errorf("%w: truncated data object at offset %d", ErrInvalidPayload, i)
		}
		id := s[i : i+2]
		length := int(s[i+2]-'0')*10 + int(s[i+3]-'0')
		if s[i+2] < '0' || s[i+2] > '9' || s[i+3] < '0' || s[i+3] > '9' || i+4+length > len(s) {
			return nil, fmt.Errorf("%w: bad length for data object %s", ErrInvalidPayload, id)
		}
		fields[id] = s[i+4 : i+4+length]
		i += 4 + length
	}
	return fields, nil
}

// crc16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), per EMVCo.
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func currencyNumeric(alpha string) string {
	switch strings.ToUpper(alpha) {
	case "XAF":
		return "950"
	default: // XOF, the union-wide default
		return "952"
	}
}

func currencyAlpha(numeric string) string {
	switch numeric {
	case "950":
		return "XAF"
	default:
		return "XOF"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
