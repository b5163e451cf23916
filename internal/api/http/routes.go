package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-insights/internal/store"
	"github.com/i474232898/weather-insights/internal/weather"
)

const serviceName = "weather-insights"

var validate = validator.New()

// WeatherService is the subset of weather.Service the handlers depend on.
type WeatherService interface {
	Day(ctx context.Context, city, date string) (weather.DayResult, error)
	Recent(ctx context.Context, city string) (weather.RecentResult, error)
	Enhanced(ctx context.Context, req weather.EnhancedRequest) (weather.EnhancedResult, error)
	Insights(ctx context.Context, city string) (weather.InsightsResult, error)
}

// DigestReader serves stored digests for a city.
type DigestReader interface {
	Latest(city string) (store.Digest, error)
	History(city string) ([]store.Digest, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherService, digests DigestReader) {
	app.Get("/", index)
	app.Get("/health", health)
	app.Get("/api/health", health)

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		var q dayQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		result, err := service.Day(c.UserContext(), q.City, q.Date)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	v1.Get("/weather/recent", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		result, err := service.Recent(c.UserContext(), q.City)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	v1.Get("/weather/enhanced", func(c *fiber.Ctx) error {
		var q enhancedQuery
		if err := q.bind(c); err != nil {
			return err
		}
		result, err := service.Enhanced(c.UserContext(), weather.EnhancedRequest{
			City: q.City,
			Days: q.Days,
			Date: q.Date,
		})
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	v1.Get("/weather/insights", func(c *fiber.Ctx) error {
		var q cityQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		result, err := service.Insights(c.UserContext(), q.City)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})

	v1.Get("/weather/digest", func(c *fiber.Ctx) error {
		var q digestQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		if q.History {
			history, err := digests.History(q.City)
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{
				"city":    q.City,
				"digests": history,
			})
		}
		digest, err := digests.Latest(q.City)
		if err != nil {
			return err
		}
		return c.JSON(digest)
	})
}

func index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"endpoints": fiber.Map{
			"/api/v1/weather":          "archived weather for one day (?city=&date=YYYY-MM-DD)",
			"/api/v1/weather/recent":   "archived weather for the last week (?city=)",
			"/api/v1/weather/enhanced": "live forecast with multi-year historical comparison (?city=&days=1-16&date=)",
			"/api/v1/weather/insights": "today against recent years (?city=)",
			"/api/v1/weather/digest":   "latest scheduled digest for a watched city (?city=&history=true)",
			"/health":                  "liveness",
			"/metrics":                 "Prometheus metrics",
		},
	})
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// cityQuery holds the query parameter identifying a city.
type cityQuery struct {
	City string `query:"city" validate:"required,max=100"`
}

// dayQuery selects one archived day; an empty date means today.
type dayQuery struct {
	City string `query:"city" validate:"required,max=100"`
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// digestQuery selects the latest digest, or every retained one with history=true.
type digestQuery struct {
	City    string `query:"city" validate:"required,max=100"`
	History bool   `query:"history"`
}

// enhancedQuery holds query parameters for the enhanced endpoint.
type enhancedQuery struct {
	City string `validate:"required,max=100"`
	Days int    `validate:"min=1,max=16"`
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

func (q *enhancedQuery) bind(c *fiber.Ctx) error {
	q.City = strings.TrimSpace(c.Query("city"))
	q.Date = c.Query("date")
	q.Days = 7

	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "days must be an integer between 1 and 16")
		}
		q.Days = n
	}

	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func bindQuery(c *fiber.Ctx, q any) error {
	if err := c.QueryParser(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if cq, ok := q.(*cityQuery); ok {
		cq.City = strings.TrimSpace(cq.City)
	}
	if dq, ok := q.(*dayQuery); ok {
		dq.City = strings.TrimSpace(dq.City)
	}
	if gq, ok := q.(*digestQuery); ok {
		gq.City = strings.TrimSpace(gq.City)
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// ErrorHandler renders every error as {"error": true, "message": ...}, mapping
// domain errors onto HTTP status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	case errors.Is(err, weather.ErrInvalidDate):
		code, message = fiber.StatusBadRequest, weather.ErrInvalidDate.Error()
	case errors.Is(err, weather.ErrLocationNotFound),
		errors.Is(err, weather.ErrNoData),
		errors.Is(err, store.ErrNotFound):
		code, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		code, message = fiber.StatusBadGateway, "upstream weather provider unavailable"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
