package httpapi

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-insight/internal/observability"
	"github.com/i474232898/weather-insight/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	msgNotFound    = "City not found or invalid input."
	msgUnavailable = "Weather service is unavailable, please try again later."
)

// lookupForm is the body of POST /.
type lookupForm struct {
	City  string `form:"city" validate:"required"`
	State string `form:"state" validate:"required"`
	Units string `form:"units" validate:"required,oneof=metric imperial"`
}

// pageData feeds templates/index.html.
type pageData struct {
	Form    lookupForm
	Weather *weatherView
	Error   string
}

type weatherView struct {
	City        string
	Temperature float64
	Humidity    float64
	UnitSymbol  string
}

type formHandler struct {
	service *weather.Service
	logger  *slog.Logger
}

func (h *formHandler) show(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, pageData{Form: lookupForm{Units: string(weather.Imperial)}})
}

// submit records the current weather for the submitted city and shows it in the chosen units.
func (h *formHandler) submit(c *fiber.Ctx) error {
	var form lookupForm
	if err := c.BodyParser(&form); err != nil {
		return render(c, fiber.StatusBadRequest, pageData{Error: msgNotFound})
	}
	form.City = strings.TrimSpace(form.City)
	form.State = strings.TrimSpace(form.State)

	page := pageData{Form: form}
	if err := validate.Struct(form); err != nil {
		page.Error = msgNotFound
		return render(c, fiber.StatusBadRequest, page)
	}

	units := weather.Units(form.Units)
	loc := weather.Location{City: form.City, State: form.State}

	res, err := h.service.Record(c.UserContext(), loc)
	if err != nil {
		if errors.Is(err, weather.ErrLocationNotFound) {
			page.Error = msgNotFound
			return render(c, fiber.StatusNotFound, page)
		}
		h.logger.Warn("form lookup failed", "location", loc.Key(), observability.Err(err))
		page.Error = msgUnavailable
		return render(c, fiber.StatusBadGateway, page)
	}

	page.Weather = &weatherView{
		City:        loc.String(),
		Temperature: units.FromCelsius(res.Reading.TemperatureC),
		Humidity:    res.Reading.HumidityPct,
		UnitSymbol:  units.Symbol(),
	}
	return render(c, fiber.StatusOK, page)
}

func render(c *fiber.Ctx, status int, data pageData) error {
	c.Status(status).Type("html", "utf-8")
	return indexTemplate.Execute(c, data)
}
