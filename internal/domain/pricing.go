package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedPrice returns price * (1 - discount/100) rounded to cents
func DiscountedPrice(price, discountPercentage float64) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(clamp(discountPercentage, 0, 100))
	factor := hundred.Sub(d).Div(hundred)
	return p.Mul(factor).Round(2)
}

// FormatPrice renders a price with exactly two decimals
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}

// DiscountedPrice of the product, formatted with two decimals
func (p Product) DiscountedPrice() string {
	return DiscountedPrice(p.Price, p.DiscountPercentage).StringFixed(2)
}

// OriginalPrice of the product, formatted with two decimals
func (p Product) OriginalPrice() string {
	return FormatPrice(p.Price)
}
