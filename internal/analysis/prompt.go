package analysis

import (
	"fmt"
	"strings"

	"github.com/bighogz/tradie/internal/llm"
	"github.com/bighogz/tradie/internal/models"
	"github.com/bighogz/tradie/internal/trend"
	"github.com/bighogz/tradie/internal/yahoo"
)

const unavailable = "unavailable"

// PromptInput is everything the prompt is built from. Nil parts render as unavailable.
type PromptInput struct {
	Ticker string
	Quote  *yahoo.Quote
	Trend  *trend.Trend
	Trade  *models.InsiderTrade
}

// BuildPrompt renders the figures and asks for the two marked sections.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticker: %s\n", in.Ticker)

	b.WriteString("Quote: ")
	if q := in.Quote; q != nil {
		fmt.Fprintf(&b, "price %.2f %s, previous close %.2f (%+.2f%%), 52-week range %.2f-%.2f, volume %d",
			q.Price, q.Currency, q.PreviousClose, q.ChangePct(), q.FiftyTwoWeekLow, q.FiftyTwoWeekHigh, q.Volume)
		if q.LongName != "" {
			fmt.Fprintf(&b, ", company %s", q.LongName)
		}
	} else {
		b.WriteString(unavailable)
	}
	b.WriteString("\n")

	b.WriteString("One-year trend: ")
	if tr := in.Trend; tr != nil {
		fmt.Fprintf(&b, "%s %.2f%% (first %.2f, last %.2f, high %.2f, low %.2f, slope %.4f per bar)",
			tr.Direction(), tr.ChangePct, tr.First, tr.Last, tr.High, tr.Low, tr.Slope)
	} else {
		b.WriteString(unavailable)
	}
	b.WriteString("\n")

	if t := in.Trade; t != nil {
		price := unavailable
		if t.Price.Valid {
			price = "$" + t.Price.Decimal.StringFixed(2)
		}
		fmt.Fprintf(&b, "Insider purchase: %s (%s) bought %d shares at %s on %s, filed %s, value $%s, ownership up %d%%\n",
			t.InsiderName, t.Title, t.Quantity, price, t.TradeDate, t.FilingDate, t.MoneyValueIncrease.StringFixed(0), t.PercentOwnedIncrease)
	}

	fmt.Fprintf(&b, "\nTurn this data into a cohesive paragraph after the line %s. "+
		"Then, based on the information, make a prediction of what the stock will do after the line %s.\n",
		llm.SummaryMarker, llm.PredictionMarker)
	return b.String()
}
