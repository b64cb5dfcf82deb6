package exchange

import (
	"sort"
	"strings"
)

// DefaultCountryCurrencies maps ISO country codes to the currency used as the
// base for rate lookups.
var DefaultCountryCurrencies = map[string]string{
	"US": "USD",
	"KZ": "KZT",
	"GB": "GBP",
	"EU": "EUR",
	"IN": "INR",
	"JP": "JPY",
	"CN": "CNY",
	"RU": "RUB",
}

// CountryTable is an immutable country -> currency lookup.
type CountryTable struct {
	currencies map[string]string
}

// NewCountryTable starts from the default table and applies overrides.
// Keys and values are upper-cased, so lower-cased config keys still match.
func NewCountryTable(overrides map[string]string) *CountryTable {
	currencies := make(map[string]string, len(DefaultCountryCurrencies)+len(overrides))
	for country, currency := range DefaultCountryCurrencies {
		currencies[country] = currency
	}
	for country, currency := range overrides {
		country = strings.ToUpper(strings.TrimSpace(country))
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if country == "" || currency == "" {
			continue
		}
		currencies[country] = currency
	}
	return &CountryTable{currencies: currencies}
}

// ResolveCurrency returns the base currency for country.
func (t *CountryTable) ResolveCurrency(country string) (string, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return "", ErrMissingCountry
	}
	currency, ok := t.currencies[country]
	if !ok {
		return "", ErrUnknownCountry.WithMessage("No currency mapping found for country code: " + country)
	}
	return currency, nil
}

type CountryCurrency struct {
	Country  string `json:"country"`
	Currency string `json:"currency"`
}

// List returns the table sorted by country code.
func (t *CountryTable) List() []CountryCurrency {
	list := make([]CountryCurrency, 0, len(t.currencies))
	for country, currency := range t.currencies {
		list = append(list, CountryCurrency{Country: country, Currency: currency})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Country < list[j].Country })
	return list
}
