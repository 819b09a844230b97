package enrich

import (
	"errors"
	"testing"

	"github.com/farxc/procurement_radar/internal/compras/types"
)

func radarCols() types.ColumnSet {
	return types.ColumnSet{
		OrderID:         true,
		InstitutionKey:  true,
		ProductKey:      true,
		SupplierKey:     true,
		ManufacturerKey: true,
		TimeKey:         true,
	}
}

func radarRow(id string, unitPrice, qty float64) types.Row {
	return types.Row{
		IDPedido:          id,
		IDProduto:         "Pro00001",
		IDInstituicao:     "Ins00001",
		IDFornecedor:      "For00001",
		IDFabricante:      "Fab00001",
		IDTempo:           20230810,
		PrecoUnitario:     unitPrice,
		QtdItensComprados: qty,
		PrecoTotal:        unitPrice * qty,
	}
}

func TestOpportunityRadarMedianBenchmark(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{
			radarRow("a", 10, 1),
			radarRow("b", 20, 1),
			radarRow("c", 30, 2),
		},
		Cols: radarCols(),
	}

	radar, err := OpportunityRadar(table, testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(radar) != 3 {
		t.Fatalf("radar rows = %d, want 3", len(radar))
	}

	for _, r := range radar {
		if !almostEqual(r.PMPBenchmarkReferencia, 20) {
			t.Errorf("benchmark = %v, want median 20", r.PMPBenchmarkReferencia)
		}
	}

	// Row "c" paid 30 for 2 units against a benchmark of 20.
	last := radar[2]
	if !almostEqual(last.EconomiaPorLinha, 20) {
		t.Errorf("economy = %v, want 20", last.EconomiaPorLinha)
	}
	if !almostEqual(last.DesvioOportunidade, 0.5) {
		t.Errorf("deviation = %v, want 0.5", last.DesvioOportunidade)
	}

	// Row "a" paid below the benchmark, the signed economy is negative.
	if radar[0].EconomiaPorLinha >= 0 {
		t.Errorf("below-benchmark line should have negative economy, got %v", radar[0].EconomiaPorLinha)
	}
}

func TestOpportunityRadarEvenGroupMidpoint(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{
			radarRow("a", 10, 1),
			radarRow("b", 30, 1),
		},
		Cols: radarCols(),
	}

	radar, err := OpportunityRadar(table, testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(radar[0].PMPBenchmarkReferencia, 20) {
		t.Errorf("even-group benchmark = %v, want 20", radar[0].PMPBenchmarkReferencia)
	}
}

func TestOpportunityRadarFiltersInvalidLines(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{
			radarRow("a", 10, 1),
			radarRow("zero-qty", 10, 0),
			radarRow("zero-total", 0, 5),
		},
		Cols: radarCols(),
	}

	radar, err := OpportunityRadar(table, testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(radar) != 1 {
		t.Fatalf("radar rows = %d, want 1 (invalid lines filtered)", len(radar))
	}
	if radar[0].IDPedido != "a" {
		t.Errorf("kept line = %q, want a", radar[0].IDPedido)
	}
}

func TestOpportunityRadarAllInvalidIsEmpty(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{radarRow("zero", 0, 0)},
		Cols: radarCols(),
	}

	radar, err := OpportunityRadar(table, testLogger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(radar) != 0 {
		t.Errorf("radar rows = %d, want 0", len(radar))
	}
}

func TestOpportunityRadarMissingKeys(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{radarRow("a", 10, 1)},
		Cols: types.ColumnSet{ProductKey: true, InstitutionKey: true},
	}

	_, err := OpportunityRadar(table, testLogger)
	var missing *types.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Columns) != 4 {
		t.Errorf("missing columns = %v, want 4 absent keys", missing.Columns)
	}
}
