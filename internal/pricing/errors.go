package pricing

import "errors"

var (
	// ErrPriceNotConfigured цена для комбинации осей не найдена ни в политике, ни в значениях по умолчанию
	ErrPriceNotConfigured = errors.New("pricing: price not configured")
)
