package models

import (
	"github.com/shopspring/decimal"
)

// InsiderTrade is one row of the insider purchases table after normalization.
// Values are never mutated once built; classification copies them into subsets.
// SourceRow is the 0-based data row of the source table, skipped rows included.
type InsiderTrade struct {
	FilerRelationshipCode string              `json:"filerRelationshipCode"`
	FilingDate            Date                `json:"filingDate"`
	TradeDate             Date                `json:"tradeDate"`
	Ticker                string              `json:"ticker"`
	CompanyName           string              `json:"companyName"`
	InsiderName           string              `json:"insiderName"`
	Title                 string              `json:"title"`
	TradeType             string              `json:"tradeType"`
	Price                 decimal.NullDecimal `json:"price"`
	Quantity              int64               `json:"quantity"`
	AlreadyOwned          int64               `json:"alreadyOwned"`
	PercentOwnedIncrease  int                 `json:"percentOwnedIncrease"`
	MoneyValueIncrease    decimal.Decimal     `json:"moneyValueIncrease"`
	Extra                 map[string]string   `json:"extra,omitempty"`
	Flags                 []string            `json:"flags,omitempty"`
	SourceRow             int                 `json:"sourceRow"`
}

// Flagged reports whether any field of the trade failed coercion.
func (t InsiderTrade) Flagged() bool {
	return len(t.Flags) > 0
}
