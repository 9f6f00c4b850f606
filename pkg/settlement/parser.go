package settlement

import (
	"context"
	"time"

	"github.com/tafypz/ercot-rts/pkg/fetcher"
	"github.com/tafypz/ercot-rts/pkg/models"
)

const (
	DefaultURL = "https://www.ercot.com/content/cdr/html/real_time_spp.html"

	// DefaultLookback is how far back Prices reaches when no cutoff is given
	DefaultLookback = 15 * time.Minute
)

// PageFetcher returns the raw bytes of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Parser fetches the real-time settlement page once per call and extracts
// prices from it.
type Parser struct {
	url        string
	dateFormat string
	timeFormat string
	loc        *time.Location
	lookback   time.Duration
	now        func() time.Time
	fetcher    PageFetcher
	extractor  *Extractor
}

type Option func(*Parser)

func WithURL(url string) Option {
	return func(p *Parser) {
		p.url = url
	}
}

func WithDateFormat(format string) Option {
	return func(p *Parser) {
		p.dateFormat = format
	}
}

func WithTimeFormat(format string) Option {
	return func(p *Parser) {
		p.timeFormat = format
	}
}

func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		p.loc = loc
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

func WithFetcher(f PageFetcher) Option {
	return func(p *Parser) {
		p.fetcher = f
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		url:        DefaultURL,
		dateFormat: DefaultDateFormat,
		timeFormat: DefaultTimeFormat,
		loc:        time.Local,
		lookback:   DefaultLookback,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		p.fetcher = fetcher.New()
	}
	p.extractor = NewExtractor(p.dateFormat, p.timeFormat, p.loc)

	return p
}

func (p *Parser) URL() string {
	return p.url
}

func (p *Parser) Extractor() *Extractor {
	return p.extractor
}

// DefaultCutoff is evaluated on every call.
func (p *Parser) DefaultCutoff() time.Time {
	return p.now().Add(-p.lookback)
}

// Locations fetches the page and lists its hubs and load zones.
func (p *Parser) Locations(ctx context.Context) ([]string, error) {
	html, err := p.fetcher.Fetch(ctx, p.url)
	if err != nil {
		return nil, err
	}
	return p.extractor.Locations(html)
}

// Prices fetches the page and returns the prices of location at or after
// cutoff. A nil cutoff means DefaultLookback before now.
func (p *Parser) Prices(ctx context.Context, location string, cutoff *time.Time) ([]models.Price, error) {
	if location == "" {
		return nil, &InvalidArgumentError{Arg: "location", Value: location, Err: ErrUnknownLocation}
	}

	var from time.Time
	if cutoff == nil {
		from = p.DefaultCutoff()
	} else {
		if cutoff.IsZero() {
			return nil, invalidCutoff(*cutoff)
		}
		from = *cutoff
	}

	html, err := p.fetcher.Fetch(ctx, p.url)
	if err != nil {
		return nil, err
	}
	return p.extractor.Prices(html, location, from)
}
