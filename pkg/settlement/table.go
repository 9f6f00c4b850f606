package settlement

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// TableSelector matches the price table on the real-time SPP page
	TableSelector = "table.tableStyle"

	OperDayHeader        = "Oper Day"
	IntervalEndingHeader = "Interval Ending"

	// leading columns that are not price locations
	fixedColumns = 2
)

// headerIndex is the ordered header row of one parse; first match wins on lookup.
type headerIndex []string

func (h headerIndex) lookup(label string) (int, bool) {
	for i, l := range h {
		if l == label {
			return i, true
		}
	}
	return -1, false
}

func (h headerIndex) locations() []string {
	if len(h) <= fixedColumns {
		return []string{}
	}
	out := make([]string, len(h)-fixedColumns)
	copy(out, h[fixedColumns:])
	return out
}

func (h headerIndex) isLocation(label string) bool {
	idx, ok := h.lookup(label)
	return ok && idx >= fixedColumns
}

func findTable(html []byte) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &StructureError{Reason: fmt.Sprintf("read html: %v", err)}
	}

	table := doc.Find(TableSelector).First()
	if table.Length() == 0 {
		return nil, &StructureError{Reason: "no " + TableSelector + " element"}
	}
	return table, nil
}

func readHeaders(table *goquery.Selection) (headerIndex, error) {
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, &StructureError{Reason: "table has no rows"}
	}

	cells := rows.First().Find("th")
	if cells.Length() == 0 {
		return nil, &StructureError{Reason: "first row has no header cells"}
	}

	headers := make(headerIndex, 0, cells.Length())
	cells.Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(s.Text()))
	})
	return headers, nil
}
