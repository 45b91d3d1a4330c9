// Package table extracts one HTML table into header labels and rows of cell text.
package table

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelector matches the insider listing table on openinsider.com.
const DefaultSelector = "table.tinytable"

// DefaultIndex is the table's historical ordinal position on the purchases page.
const DefaultIndex = 11

// Locator identifies the target table. Selector is tried first; Index is the
// ordinal among all <table> elements and is used when Selector is empty or
// matches nothing. A negative Index disables the ordinal fallback.
type Locator struct {
	Selector string `toml:"selector"`
	Index    int    `toml:"table_index"`
}

// DefaultLocator returns the locator for the openinsider purchases page.
func DefaultLocator() Locator {
	return Locator{Selector: DefaultSelector, Index: DefaultIndex}
}

func (l Locator) String() string {
	if l.Selector != "" {
		return fmt.Sprintf("%q or table #%d", l.Selector, l.Index)
	}
	return fmt.Sprintf("table #%d", l.Index)
}

// Row is one kept data row. Index is its 0-based position among all data
// rows of the source table, skipped rows included.
type Row struct {
	Index int
	Cells []string
}

// Table is the row-major text content of the located table, header row excluded.
type Table struct {
	Headers []string
	Rows    []Row
	Skipped []RowShapeError
}

// Parse locates the table in html and returns its headers and data rows.
// Rows whose cell count differs from the header count are skipped and
// reported in Table.Skipped.
func Parse(html string, loc Locator) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Reason: "invalid markup", Err: err}
	}

	tbl := locate(doc, loc)
	if tbl == nil {
		count := doc.Find("table").Length()
		return nil, &ParseError{Reason: fmt.Sprintf("no table matches %s (page has %d tables)", loc, count)}
	}

	rows := ownRows(tbl)
	out := &Table{Rows: make([]Row, 0, rows.Length())}
	index := 0

	rows.Each(func(_ int, tr *goquery.Selection) {
		if out.Headers == nil {
			if th := tr.ChildrenFiltered("th"); th.Length() > 0 {
				out.Headers = cellTexts(th)
			}
			return
		}
		td := tr.ChildrenFiltered("td")
		if td.Length() == 0 {
			return
		}
		cells := cellTexts(td)
		i := index
		index++
		if len(cells) != len(out.Headers) {
			out.Skipped = append(out.Skipped, RowShapeError{Row: i, Got: len(cells), Want: len(out.Headers)})
			return
		}
		out.Rows = append(out.Rows, Row{Index: i, Cells: cells})
	})

	if len(out.Headers) == 0 {
		return nil, &ParseError{Reason: fmt.Sprintf("table %s has no header cells", loc)}
	}
	return out, nil
}

func locate(doc *goquery.Document, loc Locator) *goquery.Selection {
	if loc.Selector != "" {
		if sel := doc.Find(loc.Selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	if loc.Index < 0 {
		return nil
	}
	tables := doc.Find("table")
	if loc.Index >= tables.Length() {
		return nil
	}
	return tables.Eq(loc.Index)
}

// ownRows returns the <tr> elements of tbl, leaving out rows of nested tables.
func ownRows(tbl *goquery.Selection) *goquery.Selection {
	return tbl.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(tbl)
	})
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, Clean(c.Text()))
	})
	return out
}

// Clean turns non-breaking spaces into ordinary spaces and trims the result.
func Clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
