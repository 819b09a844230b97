package enrich

import (
	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

// SupplierConcentration computes, per product, the share of total spend held
// by its single highest-spend supplier. Values near 1.0 flag products sourced
// almost exclusively from one supplier. Spend ties between suppliers are
// broken by the lowest supplier surrogate key, which is first-creation order,
// so the result does not depend on row order.
func SupplierConcentration(t *types.Table, appLogger *logger.Logger) error {
	const component = "SupplierConcentration"

	missing := []string{}
	if t == nil || !t.Cols.ProductKey {
		missing = append(missing, types.ColIDProduto)
	}
	if t == nil || !t.Cols.SupplierKey {
		missing = append(missing, types.ColIDFornecedor)
	}
	if len(missing) > 0 {
		return &types.MissingColumnsError{Stage: component, Columns: missing}
	}

	appLogger.Info(component, "Computing supplier concentration risk: rows=%d", len(t.Rows))

	totalSpend := make(map[string]float64)
	supplierSpend := make(map[string]map[string]float64)
	for i := range t.Rows {
		r := &t.Rows[i]
		totalSpend[r.IDProduto] += r.PrecoTotal
		bySupplier, ok := supplierSpend[r.IDProduto]
		if !ok {
			bySupplier = make(map[string]float64)
			supplierSpend[r.IDProduto] = bySupplier
		}
		bySupplier[r.IDFornecedor] += r.PrecoTotal
	}

	concentration := make(map[string]float64, len(totalSpend))
	for product, bySupplier := range supplierSpend {
		topSpend := 0.0
		topSupplier := ""
		for supplier, spend := range bySupplier {
			if topSupplier == "" || spend > topSpend || (spend == topSpend && supplier < topSupplier) {
				topSpend = spend
				topSupplier = supplier
			}
		}
		if totalSpend[product] > 0 {
			concentration[product] = topSpend / totalSpend[product]
		} else {
			concentration[product] = 0
		}
	}

	for i := range t.Rows {
		t.Rows[i].GastoUnicoForn = concentration[t.Rows[i].IDProduto]
	}

	t.Cols.Concentration = true
	appLogger.Info(component, "%%_Gasto_Unico_Forn computed: products=%d", len(concentration))
	return nil
}
