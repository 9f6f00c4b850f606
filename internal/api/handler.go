package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tafypz/ercot-rts/internal/repo"
	"github.com/tafypz/ercot-rts/pkg/fetcher"
	"github.com/tafypz/ercot-rts/pkg/logger"
	"github.com/tafypz/ercot-rts/pkg/models"
	"github.com/tafypz/ercot-rts/pkg/settlement"
)

const (
	defaultHistoryLimit = 500
	maxHistoryLimit     = 5000
	liveRequestTimeout  = 60 * time.Second
)

type LiveSource interface {
	Locations(ctx context.Context) ([]string, error)
	Prices(ctx context.Context, location string, cutoff *time.Time) ([]models.Price, error)
}

type HistoryStore interface {
	Find(ctx context.Context, query repo.PriceQuery) ([]models.Price, error)
}

type Handler struct {
	live    LiveSource
	history HistoryStore
}

func NewHandler(live LiveSource, history HistoryStore) *Handler {
	return &Handler{live: live, history: history}
}

type LocationsResponse struct {
	Items []string `json:"items"`
}

type PricesResponse struct {
	Location string         `json:"location"`
	Cutoff   *time.Time     `json:"cutoff,omitempty"`
	Items    []models.Price `json:"items"`
	Total    int            `json:"total"`
}

func SetupRoutes(app *fiber.App, h *Handler, internalToken string) {
	app.Get("/health", handleHealth)

	api := app.Group("/api", InternalAuth(internalToken))
	api.Get("/locations", h.Locations)
	api.Get("/prices", h.Prices)
	api.Get("/prices/history", h.History)
}

func handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Locations(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), liveRequestTimeout)
	defer cancel()

	locations, err := h.live.Locations(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(LocationsResponse{Items: locations})
}

// Prices extracts live prices for ?location=, optionally from ?since= (RFC3339).
func (h *Handler) Prices(c *fiber.Ctx) error {
	location := c.Query("location")

	var cutoff *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, &settlement.InvalidArgumentError{Arg: "since", Value: raw, Err: settlement.ErrInvalidCutoff})
		}
		cutoff = &t
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), liveRequestTimeout)
	defer cancel()

	prices, err := h.live.Prices(ctx, location, cutoff)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(PricesResponse{
		Location: location,
		Cutoff:   cutoff,
		Items:    prices,
		Total:    len(prices),
	})
}

// History returns stored prices for ?location= between ?from= and ?to=.
func (h *Handler) History(c *fiber.Ctx) error {
	query := repo.PriceQuery{Hub: c.Query("location"), Limit: defaultHistoryLimit}
	if query.Hub == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "location is required"})
	}

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &query.From}, {"to", &query.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + p.name + ", expected RFC3339"})
		}
		*p.dst = t
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
		}
		query.Limit = min(limit, maxHistoryLimit)
	}

	prices, err := h.history.Find(c.UserContext(), query)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(PricesResponse{
		Location: query.Hub,
		Items:    prices,
		Total:    len(prices),
	})
}

func respondError(c *fiber.Ctx, err error) error {
	var invalid *settlement.InvalidArgumentError
	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, fetcher.ErrTransport):
		logger.Log.Warn().Err(err).Str("path", c.Path()).Msg("settlement page unavailable")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.Log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
