package formatting

import (
	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"RUB": "₽",
	"USD": "$",
	"EUR": "€",
	"KZT": "₸",
	"UAH": "₴",
}

// CurrencySymbol символ валюты, для неизвестных - сам код
func CurrencySymbol(currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return symbol
	}
	return currency
}

// FormatPrice форматирует цену с копейками
func FormatPrice(price decimal.Decimal, currency string) string {
	return price.StringFixed(2) + " " + CurrencySymbol(currency)
}

// FormatPriceShort форматирует цену без копеек если они равны 0
func FormatPriceShort(price decimal.Decimal, currency string) string {
	if price.Equal(price.Truncate(0)) {
		return price.StringFixed(0) + " " + CurrencySymbol(currency)
	}
	return FormatPrice(price, currency)
}
