package checkout

import "github.com/shopspring/decimal"

var protectionRate = decimal.RequireFromString("0.10")

// ProtectionPrice is the monthly protection surcharge: ceil(price × 10%).
// Decimal arithmetic keeps whole prices like 200 from rounding up to 21.
func ProtectionPrice(monthlyPrice float64) float64 {
	return decimal.NewFromFloat(monthlyPrice).Mul(protectionRate).Ceil().InexactFloat64()
}

// ProtectionSelection is the step-2 choice with its derived price.
type ProtectionSelection struct {
	AddProtection   bool    `json:"addProtection"`
	ProtectionPrice float64 `json:"protectionPrice"`
}

func NewProtectionSelection(monthlyPrice float64, include bool) ProtectionSelection {
	return ProtectionSelection{
		AddProtection:   include,
		ProtectionPrice: ProtectionPrice(monthlyPrice),
	}
}

// TotalPrice is the monthly amount due with the selection applied.
func (p ProtectionSelection) TotalPrice(monthlyPrice float64) float64 {
	total := decimal.NewFromFloat(monthlyPrice)
	if p.AddProtection {
		total = total.Add(decimal.NewFromFloat(p.ProtectionPrice))
	}
	return total.InexactFloat64()
}
