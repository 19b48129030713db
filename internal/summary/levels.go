package summary

import (
	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

// Level colours a figure against the user's thresholds.
type Level string

const (
	LevelPositive Level = "POSITIVE"
	LevelNeutral  Level = "NEUTRAL"
	LevelAlert    Level = "ALERT"
	LevelCritical Level = "CRITICAL"
)

// ClassifyCredit rates the available credit percentage.
func ClassifyCredit(percentAvailable decimal.Decimal, t core.Thresholds) Level {
	return level(percentAvailable, t)
}

// ClassifyBalance rates the balance amount.
func ClassifyBalance(balance decimal.Decimal, t core.Thresholds) Level {
	return level(balance, t)
}

func level(v decimal.Decimal, t core.Thresholds) Level {
	switch {
	case v.LessThanOrEqual(t.Critical):
		return LevelCritical
	case v.LessThanOrEqual(t.Alert):
		return LevelAlert
	case v.GreaterThanOrEqual(t.Positive):
		return LevelPositive
	default:
		return LevelNeutral
	}
}
