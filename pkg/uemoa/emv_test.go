package uemoa

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePaymentData() PaymentData {
	return PaymentData{
		Merchant: MerchantInfo{
			Name:         "Amadou KONE",
			City:         "Abidjan",
			CountryCode:  "CI",
			CategoryCode: "0000",
			Alias:        "IFU-0001-2024",
		},
		Amount:   decimal.NewFromInt(50000),
		Currency: "XOF",
		Type:     TypeStatic,
	}
}

func TestEncodeStatic_RoundTrip(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	payload, err := codec.EncodeStatic(samplePaymentData())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(payload, "000201"), "payload format indicator")
	assert.Contains(t, payload, "int.bceao.pi")

	decoded, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "Amadou KONE", decoded.Merchant.Name)
	assert.Equal(t, "Abidjan", decoded.Merchant.City)
	assert.Equal(t, "CI", decoded.Merchant.CountryCode)
	assert.Equal(t, "IFU-0001-2024", decoded.Merchant.Alias)
	assert.Equal(t, "XOF", decoded.Currency)
	assert.Equal(t, TypeStatic, decoded.Type)
	assert.True(t, decoded.Amount.Equal(decimal.NewFromInt(50000)))
}

func TestEncodeDynamic_CarriesTransactionReference(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	data := samplePaymentData()
	data.Type = TypeDynamic
	data.TransactionID = "LIQ-TEST-001"

	payload, err := codec.EncodeDynamic(data)
	require.NoError(t, err)

	decoded, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, TypeDynamic, decoded.Type)
	assert.Equal(t, "LIQ-TEST-001", decoded.TransactionID)
}

func TestEncodeDynamic_RequiresTransactionReference(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	data := samplePaymentData()
	data.Type = TypeDynamic

	_, err := codec.EncodeDynamic(data)
	assert.ErrorIs(t, err, ErrInvalidPaymentData)
}

func TestEncode_RejectsInvalidData(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	data := samplePaymentData()
	data.Amount = decimal.Zero
	_, err := codec.EncodeStatic(data)
	assert.ErrorIs(t, err, ErrInvalidPaymentData)

	data = samplePaymentData()
	data.Merchant.Name = "  "
	_, err = codec.EncodeStatic(data)
	assert.ErrorIs(t, err, ErrInvalidPaymentData)
}

func TestEncode_RejectsOversizedDataObject(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	data := samplePaymentData()
	data.Merchant.Alias = strings.Repeat("X", 120)

	_, err := codec.EncodeStatic(data)
	assert.ErrorIs(t, err, ErrInvalidPaymentData)
}

func TestDecode_RejectsCRCMismatch(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	payload, err := codec.EncodeStatic(samplePaymentData())
	require.NoError(t, err)

	tampered := payload[:len(payload)-4] + "0000"
	_, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_RejectsTruncatedPayload(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	_, err := codec.Decode("0002")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestRenderImage_ReturnsBase64PNG(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	image, err := codec.RenderImage(samplePaymentData())
	require.NoError(t, err)
	assert.NotEmpty(t, image)
	// base64 of a PNG always starts with the encoded magic bytes
	assert.True(t, strings.HasPrefix(image, "iVBOR"))
}

func TestMerchantName_TruncatedTo25(t *testing.T) {
	codec := NewEMVCodec("int.bceao.pi", 300)

	data := samplePaymentData()
	data.Merchant.Name = strings.Repeat("A", 40)

	payload, err := codec.EncodeStatic(data)
	require.NoError(t, err)

	decoded, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Len(t, decoded.Merchant.Name, 25)
}
