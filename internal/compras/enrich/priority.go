package enrich

import (
	"math"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

// PriorityIndex combines price risk (mean absolute z-score) and financial
// demand (total spend) per product into a single [0,1] index, weighted 50/50.
// Both components are min-max normalized across products; a component with no
// spread normalizes to 0. Must run after ZScoreRisk.
func PriorityIndex(t *types.Table, appLogger *logger.Logger) error {
	const component = "PriorityIndex"

	missing := []string{}
	if t == nil || !t.Cols.ProductKey {
		missing = append(missing, types.ColIDProduto)
	}
	if t == nil || !t.Cols.ZScore {
		missing = append(missing, types.ColScoreZRisco)
	}
	if len(missing) > 0 {
		return &types.MissingColumnsError{Stage: component, Columns: missing}
	}

	appLogger.Info(component, "Computing prioritization index: rows=%d", len(t.Rows))

	type productAgg struct {
		absZSum float64
		count   int
		demand  float64
	}
	aggs := make(map[string]*productAgg)
	for i := range t.Rows {
		r := &t.Rows[i]
		a, ok := aggs[r.IDProduto]
		if !ok {
			a = &productAgg{}
			aggs[r.IDProduto] = a
		}
		a.absZSum += math.Abs(r.ScoreZRisco)
		a.count++
		a.demand += r.PrecoTotal
	}

	riskMin, riskMax := math.Inf(1), math.Inf(-1)
	demandMin, demandMax := math.Inf(1), math.Inf(-1)
	risks := make(map[string]float64, len(aggs))
	for id, a := range aggs {
		risk := a.absZSum / float64(a.count)
		risks[id] = risk
		riskMin = math.Min(riskMin, risk)
		riskMax = math.Max(riskMax, risk)
		demandMin = math.Min(demandMin, a.demand)
		demandMax = math.Max(demandMax, a.demand)
	}

	normalize := func(v, min, max float64) float64 {
		if max-min > 0 {
			return (v - min) / (max - min)
		}
		return 0
	}

	indexes := make(map[string]float64, len(aggs))
	demands := make(map[string]float64, len(aggs))
	for id, a := range aggs {
		riskNorm := normalize(risks[id], riskMin, riskMax)
		demandNorm := normalize(a.demand, demandMin, demandMax)
		indexes[id] = round4(riskNorm*0.5 + demandNorm*0.5)
		demands[id] = a.demand
	}

	for i := range t.Rows {
		r := &t.Rows[i]
		// Unmatched products default to 0 on both columns.
		r.IndicePriorizacao = indexes[r.IDProduto]
		r.DemandaValor = demands[r.IDProduto]
	}

	t.Cols.Priority = true
	appLogger.Info(component, "indice_priorizacao and demanda_valor computed: products=%d", len(aggs))
	return nil
}
