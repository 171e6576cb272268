package service

import (
	"fmt"
	"strings"

	"backend/internal/config"
	"backend/internal/model"
	"backend/pkg/uemoa"

	"github.com/shopspring/decimal"
)

// qrMapper translates a liquidation and its customer into the payment
// codec's input structure. The customer plays the merchant role: full name
// as merchant name, IFU as alias, city extracted from the free-text
// address. Country code and category code come from configuration. The
// mapper performs no I/O.
type qrMapper struct {
	cfg config.UemoaConfig
}

func newQRMapper(cfg config.UemoaConfig) *qrMapper {
	return &qrMapper{cfg: cfg}
}

// Static maps the base amount with no transaction reference.
func (m *qrMapper) Static(liq *model.Liquidation) (uemoa.PaymentData, error) {
	return m.base(liq, uemoa.TypeStatic, liq.Amount, "")
}

// Dynamic maps the base amount with the caller-supplied reference.
func (m *qrMapper) Dynamic(liq *model.Liquidation, transactionReference string) (uemoa.PaymentData, error) {
	return m.base(liq, uemoa.TypeDynamic, liq.Amount, transactionReference)
}

// P2P keys the payment on the beneficiary phone number and synthesizes a
// reference from the liquidation id and that phone.
func (m *qrMapper) P2P(liq *model.Liquidation, beneficiaryPhone string) (uemoa.PaymentData, string, error) {
	reference := fmt.Sprintf("P2P-%s-%s", liq.ID, beneficiaryPhone)
	data, err := m.base(liq, uemoa.TypeDynamic, liq.Amount, reference)
	if err != nil {
		return uemoa.PaymentData{}, "", err
	}
	data.Merchant.Alias = beneficiaryPhone
	return data, reference, nil
}

// Penalty maps base + penalty as the combined amount under the supplied
// penalty reference.
func (m *qrMapper) Penalty(liq *model.Liquidation, penalty decimal.Decimal, reference string) (uemoa.PaymentData, error) {
	return m.base(liq, uemoa.TypeDynamic, liq.Amount.Add(penalty), reference)
}

func (m *qrMapper) base(liq *model.Liquidation, qrType string, amount decimal.Decimal, reference string) (uemoa.PaymentData, error) {
	if liq.Customer == nil {
		return uemoa.PaymentData{}, validationErrorf("liquidation %s has no customer", liq.ID)
	}
	return uemoa.PaymentData{
		Merchant:      m.merchantInfo(liq.Customer),
		Amount:        amount,
		Currency:      m.cfg.Currency,
		TransactionID: reference,
		Type:          qrType,
	}, nil
}

func (m *qrMapper) merchantInfo(c *model.Customer) uemoa.MerchantInfo {
	return uemoa.MerchantInfo{
		Name:         c.FullName(),
		City:         extractCityFromAddress(c.Address, m.cfg.MerchantCity),
		CountryCode:  m.cfg.CountryCode,
		CategoryCode: m.cfg.MerchantCategoryCode,
		Alias:        c.IFU,
	}
}

// extractCityFromAddress pulls a city out of a free-text address. When the
// address mentions the configured default city (case-insensitive) that city
// wins; otherwise the second comma-delimited segment, then the last one,
// then the configured default.
func extractCityFromAddress(address, defaultCity string) string {
	if strings.TrimSpace(address) == "" {
		return defaultCity
	}

	if strings.Contains(strings.ToLower(address), strings.ToLower(defaultCity)) {
		return defaultCity
	}

	parts := strings.Split(address, ",")
	if len(parts) > 1 {
		if second := strings.TrimSpace(parts[1]); second != "" {
			return second
		}
	}
	if last := strings.TrimSpace(parts[len(parts)-1]); last != "" {
		return last
	}

	return defaultCity
}
