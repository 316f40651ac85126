package fare

import (
	"fmt"
	"strings"

	"RideDesk/entity"
	"RideDesk/internal/catalog"
)

// Calculator computes trip quotes from the static location table.
// It performs no I/O and never fails: unknown destinations use the
// catalog fallback fare and unknown passenger counts the default multiplier.
type Calculator struct {
	catalog *catalog.Catalog
}

func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{catalog: c}
}

func (c *Calculator) Quote(destination string, passengers int) entity.Quote {
	base := c.catalog.Fallback.Price
	minutes := c.catalog.Fallback.Minutes
	if loc, ok := c.catalog.Find(destination); ok {
		base = loc.Price
		minutes = loc.Minutes
	}

	total := base * c.catalog.Multiplier(passengers)

	return entity.Quote{
		BaseFare:         base,
		Surcharge:        total - base,
		Total:            total,
		EstimatedMinutes: minutes,
	}
}

// FormatMoney renders an amount with two decimals, e.g. "80.00".
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatMoneyBR renders an amount with a decimal comma, e.g. "15,00".
func FormatMoneyBR(v float64) string {
	return strings.Replace(FormatMoney(v), ".", ",", 1)
}
