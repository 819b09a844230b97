package enrich

import (
	"fmt"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

// ZScoreRisk scores every line's weighted unit price (pmp_individual) against
// its (catalog code, purchase year) group. Group mean and sample standard
// deviation are broadcast back onto every member row; the z-score is 0 when
// the group has no dispersion (singleton or all-equal groups). Values are
// rounded to 2 decimal places.
func ZScoreRisk(t *types.Table, appLogger *logger.Logger) error {
	const component = "ZScoreRisk"

	if t == nil || len(t.Rows) == 0 {
		appLogger.Error(component, "Empty fact table, skipping z-score")
		return &types.MissingColumnsError{Stage: component, Columns: []string{types.ColCompra, types.ColCodigoBR, types.ColPrecoTotal, types.ColQtdItensComprados}}
	}

	appLogger.Info(component, "Computing price-risk z-score: rows=%d", len(t.Rows))

	// Purchase year provides the time window of the group context.
	for i := range t.Rows {
		r := &t.Rows[i]
		if !r.Compra.IsZero() {
			r.AnoCompra = r.Compra.Year()
		}
		if r.QtdItensComprados > 0 {
			r.PMPIndividual = r.PrecoTotal / r.QtdItensComprados
		} else {
			r.PMPIndividual = 0
		}
	}

	groupKey := func(r *types.Row) string {
		return fmt.Sprintf("%s|%d", r.CodigoBR, r.AnoCompra)
	}

	groups := make(map[string][]float64)
	for i := range t.Rows {
		k := groupKey(&t.Rows[i])
		groups[k] = append(groups[k], t.Rows[i].PMPIndividual)
	}

	type groupStats struct {
		mean float64
		std  float64
	}
	stats := make(map[string]groupStats, len(groups))
	for k, values := range groups {
		stats[k] = groupStats{mean: mean(values), std: sampleStdDev(values)}
	}

	for i := range t.Rows {
		r := &t.Rows[i]
		gs := stats[groupKey(r)]
		r.PMPMedio = gs.mean
		r.PMPDesvioPadrao = gs.std
		if gs.std > 0 {
			r.ScoreZRisco = round2((r.PMPIndividual - gs.mean) / gs.std)
		} else {
			r.ScoreZRisco = 0
		}
	}

	t.Cols.ZScore = true
	appLogger.Info(component, "score_z_risco computed: groups=%d", len(groups))
	return nil
}
