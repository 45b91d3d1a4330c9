package normalize

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/bighogz/tradie/internal/table"
)

// Field is the semantic name a display header maps to.
type Field string

const (
	FieldFilerRelationshipCode Field = "filerRelationshipCode"
	FieldFilingDate            Field = "filingDate"
	FieldTradeDate             Field = "tradeDate"
	FieldTicker                Field = "ticker"
	FieldCompanyName           Field = "companyName"
	FieldInsiderName           Field = "insiderName"
	FieldTitle                 Field = "title"
	FieldTradeType             Field = "tradeType"
	FieldPrice                 Field = "price"
	FieldQuantity              Field = "quantity"
	FieldAlreadyOwned          Field = "alreadyOwned"
	FieldPercentOwnedIncrease  Field = "percentOwnedIncrease"
	FieldMoneyValueIncrease    Field = "moneyValueIncrease"
)

// Columns maps the display headers of the insider table to field names.
var Columns = map[string]Field{
	"X":            FieldFilerRelationshipCode,
	"Filing Date":  FieldFilingDate,
	"Trade Date":   FieldTradeDate,
	"Ticker":       FieldTicker,
	"Company Name": FieldCompanyName,
	"Insider Name": FieldInsiderName,
	"Title":        FieldTitle,
	"Trade Type":   FieldTradeType,
	"Price":        FieldPrice,
	"Qty":          FieldQuantity,
	"Owned":        FieldAlreadyOwned,
	"ΔOwn":         FieldPercentOwnedIncrease,
	"Value":        FieldMoneyValueIncrease,
}

// required headers; without them no role classification is possible.
var required = []string{"Ticker", "Title", "ΔOwn"}

// Recognized returns how many of headers map to a known field.
func Recognized(headers []string) int {
	n := 0
	for _, h := range headers {
		if _, ok := Columns[h]; ok {
			n++
		}
	}
	return n
}

// CheckHeaders fails with a *table.ParseError when a header the classifier
// depends on is missing.
func CheckHeaders(headers []string) error {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}
	var missing []string
	for _, h := range required {
		if !seen[h] {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return &table.ParseError{Reason: "unexpected header shape, missing " + strings.Join(lo.Map(missing, func(h string, _ int) string { return strconv.Quote(h) }), ", ")}
	}
	return nil
}
