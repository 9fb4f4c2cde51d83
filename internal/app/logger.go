package app

import (
	"go-payroll/internal/config"

	"go.uber.org/zap"
)

// NewLogger returns a JSON production logger when APP_ENV=production and a
// console development logger otherwise.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
