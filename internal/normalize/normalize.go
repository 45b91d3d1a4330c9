// Package normalize turns raw table rows into typed insider trades.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bighogz/tradie/internal/models"
)

// FieldCoercionError reports a cell whose text could not be converted to its
// field type. The trade is still produced; the field falls back to its raw
// text (dates) or its zero/absent value and the trade is flagged.
type FieldCoercionError struct {
	Row   int    `json:"row"`
	Field Field  `json:"field"`
	Raw   string `json:"raw"`
	Err   error  `json:"-"`
}

func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("normalize: row %d: cannot coerce %s %q: %v", e.Row, e.Field, e.Raw, e.Err)
}

func (e *FieldCoercionError) Unwrap() error { return e.Err }

// Row maps one raw row onto an InsiderTrade. headers and cells must have the
// same length; the table parser guarantees that. rowIndex is the source
// table position; it becomes SourceRow and labels coercion errors.
func Row(rowIndex int, headers, cells []string) (models.InsiderTrade, []*FieldCoercionError) {
	trade := models.InsiderTrade{SourceRow: rowIndex}
	var errs []*FieldCoercionError
	fail := func(f Field, raw string, err error) {
		errs = append(errs, &FieldCoercionError{Row: rowIndex, Field: f, Raw: raw, Err: err})
		trade.Flags = append(trade.Flags, string(f))
	}

	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		raw := cells[i]
		field, ok := Columns[h]
		if !ok {
			if trade.Extra == nil {
				trade.Extra = make(map[string]string)
			}
			trade.Extra[h] = raw
			continue
		}

		switch field {
		case FieldFilerRelationshipCode:
			trade.FilerRelationshipCode = raw
		case FieldFilingDate:
			trade.FilingDate = date(raw, func(err error) { fail(field, raw, err) })
		case FieldTradeDate:
			trade.TradeDate = date(raw, func(err error) { fail(field, raw, err) })
		case FieldTicker:
			trade.Ticker = strings.ToUpper(raw)
		case FieldCompanyName:
			trade.CompanyName = raw
		case FieldInsiderName:
			trade.InsiderName = raw
		case FieldTitle:
			trade.Title = raw
		case FieldTradeType:
			trade.TradeType = raw
		case FieldPrice:
			if d, err := ParseMoney(raw); err == nil {
				trade.Price = decimal.NewNullDecimal(d)
			} else if !errors.Is(err, errEmpty) {
				fail(field, raw, err)
			}
		case FieldQuantity:
			trade.Quantity = integer(raw, func(err error) { fail(field, raw, err) })
		case FieldAlreadyOwned:
			trade.AlreadyOwned = integer(raw, func(err error) { fail(field, raw, err) })
		case FieldPercentOwnedIncrease:
			trade.PercentOwnedIncrease = ParsePercent(raw)
		case FieldMoneyValueIncrease:
			if d, err := ParseMoney(raw); err == nil {
				trade.MoneyValueIncrease = d
			} else if !errors.Is(err, errEmpty) {
				fail(field, raw, err)
			}
		}
	}
	return trade, errs
}

func date(raw string, onErr func(error)) models.Date {
	t, err := ParseDate(raw)
	if err == nil {
		return models.NewDate(t)
	}
	if !errors.Is(err, errEmpty) {
		onErr(err)
	}
	return models.RawDate(raw)
}

func integer(raw string, onErr func(error)) int64 {
	n, err := ParseInt(raw)
	if err != nil && !errors.Is(err, errEmpty) {
		onErr(err)
	}
	if err != nil {
		return 0
	}
	return n
}
