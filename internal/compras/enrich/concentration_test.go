package enrich

import (
	"errors"
	"testing"

	"github.com/farxc/procurement_radar/internal/compras/types"
)

func spendRow(product, supplier string, spend float64) types.Row {
	return types.Row{IDProduto: product, IDFornecedor: supplier, PrecoTotal: spend}
}

func concentrationTable(rows ...types.Row) *types.Table {
	return &types.Table{
		Rows: rows,
		Cols: types.ColumnSet{ProductKey: true, SupplierKey: true},
	}
}

func TestSupplierConcentrationShare(t *testing.T) {
	table := concentrationTable(
		spendRow("Pro00001", "For00001", 700),
		spendRow("Pro00001", "For00002", 300),
	)

	if err := SupplierConcentration(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, r := range table.Rows {
		if !almostEqual(r.GastoUnicoForn, 0.7) {
			t.Errorf("row %d: concentration = %v, want 0.7", i, r.GastoUnicoForn)
		}
	}
	if !table.Cols.Concentration {
		t.Error("Concentration column flag should be set")
	}
}

func TestSupplierConcentrationSingleSupplier(t *testing.T) {
	table := concentrationTable(
		spendRow("Pro00001", "For00001", 120),
		spendRow("Pro00001", "For00001", 380),
	)

	if err := SupplierConcentration(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Rows[0].GastoUnicoForn; !almostEqual(got, 1.0) {
		t.Errorf("single-supplier product concentration = %v, want 1.0", got)
	}
}

func TestSupplierConcentrationTieIsDeterministic(t *testing.T) {
	// Equal spend: the lowest supplier key wins regardless of row order.
	forward := concentrationTable(
		spendRow("Pro00001", "For00001", 500),
		spendRow("Pro00001", "For00002", 500),
	)
	reversed := concentrationTable(
		spendRow("Pro00001", "For00002", 500),
		spendRow("Pro00001", "For00001", 500),
	)

	if err := SupplierConcentration(forward, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SupplierConcentration(reversed, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(forward.Rows[0].GastoUnicoForn, reversed.Rows[0].GastoUnicoForn) {
		t.Errorf("tie result depends on row order: %v vs %v",
			forward.Rows[0].GastoUnicoForn, reversed.Rows[0].GastoUnicoForn)
	}
	if !almostEqual(forward.Rows[0].GastoUnicoForn, 0.5) {
		t.Errorf("tied concentration = %v, want 0.5", forward.Rows[0].GastoUnicoForn)
	}
}

func TestSupplierConcentrationZeroSpend(t *testing.T) {
	table := concentrationTable(spendRow("Pro00001", "For00001", 0))

	if err := SupplierConcentration(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Rows[0].GastoUnicoForn; got != 0 {
		t.Errorf("zero total spend should yield 0, got %v", got)
	}
}

func TestSupplierConcentrationMissingColumns(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{spendRow("Pro00001", "For00001", 10)},
		Cols: types.ColumnSet{ProductKey: true},
	}

	err := SupplierConcentration(table, testLogger)
	var missing *types.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
}
