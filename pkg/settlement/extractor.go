package settlement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tafypz/ercot-rts/pkg/models"
)

const (
	DefaultDateFormat = "01/02/2006"
	DefaultTimeFormat = "1504"

	// minDataCells is the smallest row that can carry day, time and one price
	minDataCells = 3
)

// Extractor turns the settlement page HTML into price records. It holds only
// formats and is safe for concurrent use.
type Extractor struct {
	dateFormat string
	timeFormat string
	loc        *time.Location
}

func NewExtractor(dateFormat, timeFormat string, loc *time.Location) *Extractor {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}
	if loc == nil {
		loc = time.Local
	}
	return &Extractor{dateFormat: dateFormat, timeFormat: timeFormat, loc: loc}
}

// Locations returns the hub and load zone column names in table order.
func (e *Extractor) Locations(html []byte) ([]string, error) {
	table, err := findTable(html)
	if err != nil {
		return nil, err
	}
	headers, err := readHeaders(table)
	if err != nil {
		return nil, err
	}
	return headers.locations(), nil
}

// Prices returns the records of location whose interval ends at or after
// cutoff, in table order. One malformed row fails the whole call.
func (e *Extractor) Prices(html []byte, location string, cutoff time.Time) ([]models.Price, error) {
	if location == "" {
		return nil, &InvalidArgumentError{Arg: "location", Value: location, Err: ErrUnknownLocation}
	}
	if cutoff.IsZero() {
		return nil, invalidCutoff(cutoff)
	}

	table, err := findTable(html)
	if err != nil {
		return nil, err
	}
	headers, err := readHeaders(table)
	if err != nil {
		return nil, err
	}

	if !headers.isLocation(location) {
		return nil, &InvalidArgumentError{Arg: "location", Value: location, Err: ErrUnknownLocation}
	}
	priceIdx, _ := headers.lookup(location)

	dateIdx, ok := headers.lookup(OperDayHeader)
	if !ok {
		return nil, &StructureError{Reason: fmt.Sprintf("missing %q header", OperDayHeader)}
	}
	timeIdx, ok := headers.lookup(IntervalEndingHeader)
	if !ok {
		return nil, &StructureError{Reason: fmt.Sprintf("missing %q header", IntervalEndingHeader)}
	}

	maxIdx := max(priceIdx, dateIdx, timeIdx)

	result := []models.Price{}
	var rowErr error

	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < minDataCells {
			return true
		}
		if cells.Length() <= maxIdx {
			rowErr = &StructureError{Reason: fmt.Sprintf("row %d has %d cells, need %d", i, cells.Length(), maxIdx+1)}
			return false
		}

		day := strings.TrimSpace(cells.Eq(dateIdx).Text())
		hhmm := strings.TrimSpace(cells.Eq(timeIdx).Text())
		ts, err := buildTimestamp(day, hhmm, e.dateFormat, e.timeFormat, e.loc)
		if err != nil {
			rowErr = err
			return false
		}

		raw := strings.TrimSpace(cells.Eq(priceIdx).Text())
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			rowErr = &ParseError{Field: "price", Value: raw, Err: err}
			return false
		}

		if !ts.Before(cutoff) {
			result = append(result, models.Price{
				Price:     value,
				Timestamp: ts,
				Hub:       location,
			})
		}
		return true
	})

	if rowErr != nil {
		return nil, rowErr
	}
	return result, nil
}
