package weather

import "fmt"

// Units selects the temperature scale used for display and for the upstream query.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// ParseUnits validates a units selector as submitted by users.
func ParseUnits(s string) (Units, error) {
	switch Units(s) {
	case Metric, Imperial:
		return Units(s), nil
	default:
		return "", fmt.Errorf("invalid units %q: use metric or imperial", s)
	}
}

// Symbol returns the temperature symbol for the units.
func (u Units) Symbol() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// FromCelsius converts a stored temperature into the units.
func (u Units) FromCelsius(c float64) float64 {
	if u == Imperial {
		return CelsiusToFahrenheit(c)
	}
	return c
}

// ToCelsius converts a temperature expressed in the units into °C.
func (u Units) ToCelsius(t float64) float64 {
	if u == Imperial {
		return FahrenheitToCelsius(t)
	}
	return t
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
