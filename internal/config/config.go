package config

import (
	"os"
	"strconv"
)

// UemoaConfig groups the merchant and payment-system defaults used when
// building UEMOA QR payloads. It is built once at startup from the
// environment and passed explicitly into the services that need it.
type UemoaConfig struct {
	MerchantName         string
	MerchantCity         string
	CountryCode          string
	Currency             string
	MerchantCategoryCode string
	MerchantAlias        string
	PaymentSystemID      string
	MinAmount            int64 // smallest accepted amount, in currency minor units
	MaxAmount            int64
	QRImageSize          int // pixels, square
}

// LoadUemoaConfig reads UEMOA settings from the environment, falling back to
// the BCEAO sandbox defaults.
func LoadUemoaConfig() UemoaConfig {
	return UemoaConfig{
		MerchantName:         envString("UEMOA_MERCHANT_NAME", "LIQUIDATION APP"),
		MerchantCity:         envString("UEMOA_MERCHANT_CITY", "Abidjan"),
		CountryCode:          envString("UEMOA_COUNTRY_CODE", "CI"),
		Currency:             envString("UEMOA_CURRENCY", "XOF"),
		MerchantCategoryCode: envString("UEMOA_MERCHANT_CATEGORY_CODE", "0000"),
		MerchantAlias:        envString("UEMOA_MERCHANT_ALIAS", "test-123"),
		PaymentSystemID:      envString("UEMOA_PAYMENT_SYSTEM_ID", "int.bceao.pi"),
		MinAmount:            envInt64("UEMOA_MIN_AMOUNT", 1),
		MaxAmount:            envInt64("UEMOA_MAX_AMOUNT", 999999),
		QRImageSize:          int(envInt64("UEMOA_QR_SIZE", 300)),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
