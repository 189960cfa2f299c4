package domain

import (
	"strings"
)

// CurrencyCode is an ISO 4217 alphabetic code.
type CurrencyCode string

// zeroDecimalCurrencies lists the currencies Stripe charges without a minor unit.
// https://stripe.com/docs/currencies#zero-decimal
var zeroDecimalCurrencies = map[CurrencyCode]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"MGA": {},
	"PYG": {},
	"RWF": {},
	"UGX": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// HasFractionalSubunit reports whether the currency has a minor unit.
func (c CurrencyCode) HasFractionalSubunit() bool {
	_, zero := zeroDecimalCurrencies[CurrencyCode(strings.ToUpper(string(c)))]
	return !zero
}

// Lower is the form Stripe expects in API requests.
func (c CurrencyCode) Lower() string {
	return strings.ToLower(string(c))
}

// GatewayAmount converts a stored total into the amount Stripe expects.
// Totals are stored x100 for every currency, which is only correct for
// currencies with a fractional subunit.
func GatewayAmount(storedTotal int64, currency CurrencyCode) int64 {
	if currency.HasFractionalSubunit() {
		return storedTotal
	}
	return roundHalfUp(storedTotal, 100)
}

// roundHalfUp divides n by d rounding halves toward positive infinity,
// using integer arithmetic only.
func roundHalfUp(n, d int64) int64 {
	q, r := n/d, n%d
	if r < 0 {
		q, r = q-1, r+d
	}
	if 2*r >= d {
		q++
	}
	return q
}
