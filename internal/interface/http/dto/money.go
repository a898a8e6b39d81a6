package dto

import "github.com/shopspring/decimal"

// FormatPrice 分 → 元，保留两位小数
// 例如：129999 → "1299.99"
func FormatPrice(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
