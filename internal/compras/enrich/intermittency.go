package enrich

import (
	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

// monthIndex collapses a date into a single comparable year-month bucket.
func monthIndex(year, month int) int {
	return year*12 + (month - 1)
}

// IntermittencyRisk measures how sparsely each product was purchased across
// the global observation window: 1 - (distinct active months / window months).
// 0 means purchased every month of the window; values near 1 mean sparse,
// intermittent demand. The window spans the earliest to the latest valid
// purchase month of the whole table, inclusive.
func IntermittencyRisk(t *types.Table, appLogger *logger.Logger) error {
	const component = "IntermittencyRisk"

	if t == nil || !t.Cols.ProductKey {
		return &types.MissingColumnsError{Stage: component, Columns: []string{types.ColIDProduto, types.ColDataCompra}}
	}

	appLogger.Info(component, "Computing demand intermittency risk: rows=%d", len(t.Rows))

	windowMin, windowMax := 0, 0
	haveWindow := false
	productMonths := make(map[string]map[int]struct{})

	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Compra.IsZero() {
			continue
		}
		m := monthIndex(r.Compra.Year(), int(r.Compra.Month()))
		if !haveWindow {
			windowMin, windowMax = m, m
			haveWindow = true
		} else {
			if m < windowMin {
				windowMin = m
			}
			if m > windowMax {
				windowMax = m
			}
		}
		months, ok := productMonths[r.IDProduto]
		if !ok {
			months = make(map[int]struct{})
			productMonths[r.IDProduto] = months
		}
		months[m] = struct{}{}
	}

	if !haveWindow {
		return &types.ErrNoWindow{Stage: component}
	}

	totalMonths := windowMax - windowMin + 1

	for i := range t.Rows {
		r := &t.Rows[i]
		active := len(productMonths[r.IDProduto])
		r.MesesComprados = active
		if totalMonths > 0 {
			r.RiscoIntermitencia = 1 - float64(active)/float64(totalMonths)
		} else {
			r.RiscoIntermitencia = 0
		}
	}

	t.Cols.Intermittency = true
	appLogger.Info(component, "Risco_Intermitencia computed: windowMonths=%d products=%d", totalMonths, len(productMonths))
	return nil
}
