package models

import (
	"strings"
	"testing"
)

func aligned(n int) DailyForecast {
	return DailyForecast{
		Time:                 make([]string, n),
		TempMax:              make([]float64, n),
		TempMin:              make([]float64, n),
		WeatherCode:          make([]int, n),
		Sunrise:              make([]string, n),
		Sunset:               make([]string, n),
		RainSum:              make([]float64, n),
		UVIndexMax:           make([]float64, n),
		PrecipProbabilityMax: make([]int, n),
	}
}

func TestDailyForecastValidate(t *testing.T) {
	d := aligned(7)
	if err := d.Validate(); err != nil {
		t.Fatalf("aligned forecast should validate: %v", err)
	}
	if d.Days() != 7 {
		t.Errorf("Days() = %d, want 7", d.Days())
	}
}

func TestDailyForecastValidateMisaligned(t *testing.T) {
	d := aligned(7)
	d.TempMax = d.TempMax[:6]
	err := d.Validate()
	if err == nil {
		t.Fatal("misaligned forecast should fail validation")
	}
	if !strings.Contains(err.Error(), "temperature_2m_max") {
		t.Errorf("error should name the misaligned array, got %v", err)
	}
}

func TestDailyForecastValidateEmpty(t *testing.T) {
	d := aligned(0)
	if err := d.Validate(); err == nil {
		t.Fatal("empty forecast should fail validation")
	}
}
