package fundconfig

import (
	"github.com/wonny/fundfactor/internal/fund"
)

// Fund is a fund definition file
type Fund struct {
	Name     string `yaml:"name" toml:"name"`
	Ticker   string `yaml:"ticker" toml:"ticker" validate:"required_without=File,excluded_with=File"`
	File     string `yaml:"file" toml:"file" validate:"required_without=Ticker"`
	Currency string `yaml:"currency" toml:"currency" validate:"required"`
	Region   string `yaml:"region" toml:"region" validate:"required"`
	Window   int    `yaml:"window" toml:"window" validate:"gte=0"`
}

// Spec converts the definition into a fund spec
func (f *Fund) Spec() fund.Spec {
	return fund.Spec{
		Name:     f.Name,
		Ticker:   f.Ticker,
		File:     f.File,
		Currency: f.Currency,
		Region:   f.Region,
		Window:   f.Window,
	}
}
