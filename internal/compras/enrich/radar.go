package enrich

import (
	"fmt"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

// OpportunityRadar derives the radar table: for every valid line (positive
// price and quantity) it compares the unit price paid with the median unit
// price of its (product, institution, time period) group. The median is the
// benchmark, chosen over the mean for robustness to outliers. The signed
// per-line economy is (unit price - benchmark) * quantity; negative means the
// line was cheaper than the benchmark. When any required column is absent the
// radar is empty, which downstream treats as nothing to export, not a failure.
func OpportunityRadar(t *types.Table, appLogger *logger.Logger) ([]types.RadarRow, error) {
	const component = "OpportunityRadar"

	missing := []string{}
	check := func(present bool, col string) {
		if !present {
			missing = append(missing, col)
		}
	}
	if t == nil {
		t = &types.Table{}
	}
	check(t.Cols.ProductKey, types.ColIDProduto)
	check(t.Cols.InstitutionKey, types.ColIDInstituicao)
	check(t.Cols.TimeKey, types.ColIDTempo)
	check(t.Cols.OrderID, types.ColIDPedido)
	check(t.Cols.SupplierKey, types.ColIDFornecedor)
	check(t.Cols.ManufacturerKey, types.ColIDFabricante)
	if len(missing) > 0 {
		return nil, &types.MissingColumnsError{Stage: component, Columns: missing}
	}

	valid := make([]*types.Row, 0, len(t.Rows))
	for i := range t.Rows {
		r := &t.Rows[i]
		if r.PrecoTotal > 0 && r.QtdItensComprados > 0 {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		appLogger.Warn(component, "No valid transactions after price/quantity filter, radar is empty")
		return nil, nil
	}

	benchmarkKey := func(r *types.Row) string {
		return fmt.Sprintf("%s|%s|%d", r.IDProduto, r.IDInstituicao, r.IDTempo)
	}

	groups := make(map[string][]float64)
	for _, r := range valid {
		k := benchmarkKey(r)
		groups[k] = append(groups[k], r.PrecoUnitario)
	}
	benchmarks := make(map[string]float64, len(groups))
	for k, prices := range groups {
		benchmarks[k] = median(prices)
	}

	radar := make([]types.RadarRow, 0, len(valid))
	for _, r := range valid {
		benchmark := benchmarks[benchmarkKey(r)]
		deviation := 0.0
		if benchmark > 0 {
			deviation = (r.PrecoUnitario - benchmark) / benchmark
		}
		radar = append(radar, types.RadarRow{
			IDPedido:               r.IDPedido,
			IDProduto:              r.IDProduto,
			IDInstituicao:          r.IDInstituicao,
			IDFabricante:           r.IDFabricante,
			IDFornecedor:           r.IDFornecedor,
			IDTempo:                r.IDTempo,
			PMPPagoLinha:           r.PrecoUnitario,
			PMPBenchmarkReferencia: benchmark,
			DesvioOportunidade:     deviation,
			EconomiaPorLinha:       (r.PrecoUnitario - benchmark) * r.QtdItensComprados,
		})
	}

	appLogger.Info(component, "Radar table generated: rows=%d benchmarkGroups=%d", len(radar), len(groups))
	return radar, nil
}
