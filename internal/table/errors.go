package table

import "fmt"

// ParseError means the target table could not be found or has an unusable
// header. It usually signals that the upstream page layout changed.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("table: %s: %v", e.Reason, e.Err)
	}
	return "table: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowShapeError records a data row whose cell count did not match the header.
// Row is the 0-based position among data rows, as in Row.Index.
type RowShapeError struct {
	Row  int `json:"row"`
	Got  int `json:"got"`
	Want int `json:"want"`
}

func (e RowShapeError) Error() string {
	return fmt.Sprintf("table: row %d has %d cells, header has %d", e.Row, e.Got, e.Want)
}
