package exchange

import (
	"context"
	"encoding/json"
	"net/http"

	"weather_gateway/internal/apperr"

	"github.com/gin-gonic/gin"
)

// RateGetter is the part of Cache the controller needs.
type RateGetter interface {
	GetRates(ctx context.Context, base string) (*Snapshot, error)
}

type ExchangeController struct {
	rates     RateGetter
	countries *CountryTable
}

func NewExchangeController(rates RateGetter, countries *CountryTable) *ExchangeController {
	return &ExchangeController{
		rates:     rates,
		countries: countries,
	}
}

type RatesResponse struct {
	Rates        map[string]json.Number `json:"rates"`
	BaseCurrency string                 `json:"baseCurrency"`
}

// GetRates handles GET /api/exchange-rate?country=
func (ec *ExchangeController) GetRates(c *gin.Context) {
	base, err := ec.countries.ResolveCurrency(c.Query("country"))
	if err != nil {
		apperr.Write(c, err)
		return
	}

	snapshot, err := ec.rates.GetRates(c.Request.Context(), base)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	rates := make(map[string]json.Number, len(snapshot.Rates))
	for currency, rate := range snapshot.Rates {
		rates[currency] = json.Number(rate.String())
	}

	c.JSON(http.StatusOK, RatesResponse{
		Rates:        rates,
		BaseCurrency: snapshot.BaseCurrency,
	})
}

// ListCurrencies handles GET /api/exchange-rate/currencies
func (ec *ExchangeController) ListCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currencies": ec.countries.List(),
	})
}
