package service

import (
	"testing"

	"backend/internal/config"
	"backend/internal/model"
	"backend/pkg/uemoa"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUemoaConfig() config.UemoaConfig {
	return config.UemoaConfig{
		MerchantName:         "LIQUIDATION APP",
		MerchantCity:         "Abidjan",
		CountryCode:          "CI",
		Currency:             "XOF",
		MerchantCategoryCode: "0000",
		MerchantAlias:        "test-123",
		PaymentSystemID:      "int.bceao.pi",
		MinAmount:            1,
		MaxAmount:            999999,
		QRImageSize:          300,
	}
}

func mapperFixture() *model.Liquidation {
	return &model.Liquidation{
		ID:     uuid.New(),
		Amount: decimal.NewFromInt(50000),
		Customer: &model.Customer{
			LastName:  "KONE",
			FirstName: "Amadou",
			Address:   "Cocody, Abidjan",
			IFU:       "IFU-0001-2024",
			Phone:     "+2250701020304",
		},
	}
}

func TestQRMapper_StaticUsesCustomerAsMerchant(t *testing.T) {
	m := newQRMapper(testUemoaConfig())

	data, err := m.Static(mapperFixture())
	require.NoError(t, err)

	assert.Equal(t, "Amadou KONE", data.Merchant.Name)
	assert.Equal(t, "IFU-0001-2024", data.Merchant.Alias, "IFU plays the merchant alias")
	assert.Equal(t, "Abidjan", data.Merchant.City)
	assert.Equal(t, "CI", data.Merchant.CountryCode)
	assert.Equal(t, "XOF", data.Currency)
	assert.Equal(t, uemoa.TypeStatic, data.Type)
	assert.Empty(t, data.TransactionID)
	assert.True(t, data.Amount.Equal(decimal.NewFromInt(50000)))
}

func TestQRMapper_DynamicCarriesReference(t *testing.T) {
	m := newQRMapper(testUemoaConfig())

	data, err := m.Dynamic(mapperFixture(), "LIQ-REF-1")
	require.NoError(t, err)

	assert.Equal(t, uemoa.TypeDynamic, data.Type)
	assert.Equal(t, "LIQ-REF-1", data.TransactionID)
}

func TestQRMapper_P2PUsesPhoneAsAlias(t *testing.T) {
	m := newQRMapper(testUemoaConfig())
	liq := mapperFixture()

	data, reference, err := m.P2P(liq, "+2250709999999")
	require.NoError(t, err)

	assert.Equal(t, "+2250709999999", data.Merchant.Alias)
	assert.Equal(t, "P2P-"+liq.ID.String()+"-+2250709999999", reference)
	assert.Equal(t, reference, data.TransactionID)
}

func TestQRMapper_PenaltyCombinesAmounts(t *testing.T) {
	m := newQRMapper(testUemoaConfig())

	data, err := m.Penalty(mapperFixture(), decimal.NewFromInt(2500), "PENALTY-REF")
	require.NoError(t, err)

	assert.Equal(t, "52500", data.Amount.String())
	assert.Equal(t, "PENALTY-REF", data.TransactionID)
}

func TestQRMapper_MissingCustomer(t *testing.T) {
	m := newQRMapper(testUemoaConfig())
	liq := mapperFixture()
	liq.Customer = nil

	_, err := m.Static(liq)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestExtractCityFromAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    string
	}{
		{"blank address", "  ", "Abidjan"},
		{"mentions default city", "Rue 12, ABIDJAN, Cocody", "Abidjan"},
		{"second segment", "Quartier Zongo, Bouaké, Vallée du Bandama", "Bouaké"},
		{"single segment", "Yamoussoukro", "Yamoussoukro"},
		{"empty second segment falls back to last", "Rue 5, , Korhogo", "Korhogo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractCityFromAddress(tc.address, "Abidjan"))
		})
	}
}
