package config

import (
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/payment"
	"github.com/Nicolas4485/allam-demo-payment-integration/pkg/utils"
)

// PaymentConfig converts the loaded configuration into the explicit
// payment.Config the processor is built from.
func (c *Config) PaymentConfig() payment.Config {
	return payment.Config{
		Moyasar: payment.GatewayConfig{
			BaseURL:   c.Payment.Moyasar.BaseURL,
			SecretKey: c.Payment.Moyasar.SecretKey,
		},
		Tap: payment.GatewayConfig{
			BaseURL:   c.Payment.Tap.BaseURL,
			SecretKey: c.Payment.Tap.SecretKey,
		},
		Timeout: c.Payment.Timeout,
		DefaultSeller: payment.Seller{
			Name:      c.Seller.Name,
			VATNumber: c.Seller.VATNumber,
		},
	}
}

// LoggerConfig converts the logger section for utils.NewLogger
func (c *Config) LoggerConfig(service string) utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
		Service:    service,
	}
}
