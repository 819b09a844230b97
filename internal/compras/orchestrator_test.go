package compras

import (
	"math"
	"testing"
	"time"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

var testLogger = &logger.Logger{MinLevel: logger.LevelError}

func pipelineRow(inst, product, supplier string, date time.Time, unitPrice, qty float64) types.Row {
	return types.Row{
		CNPJInstituicao:    inst,
		NomeInstituicao:    "INST " + inst,
		MunicipioInstituicao: "CIDADE " + inst,
		UF:                 "SP",
		CodigoBR:           product,
		DescricaoCatmat:    "MED " + product,
		CNPJFornecedor:     supplier,
		Fornecedor:         "FORN " + supplier,
		CNPJFabricante:     "99888777000166",
		Fabricante:         "FAB",
		Compra:             date,
		Insercao:           date,
		UnidFornCapacidade: "COMPRIMIDO",
		Capacidade:         500,
		UnidadeMedida:      "MG",
		PrecoUnitario:      unitPrice,
		QtdItensComprados:  qty,
		PrecoTotal:         unitPrice * qty,
	}
}

func fullPipelineTable() *types.Table {
	d1 := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC)
	return &types.Table{
		Rows: []types.Row{
			pipelineRow("11111111000101", "100", "44444444000101", d1, 2.5, 100),
			pipelineRow("11111111000101", "100", "44444444000101", d1, 3.5, 50),
			pipelineRow("22222222000101", "100", "55555555000101", d2, 2.0, 200),
			pipelineRow("22222222000101", "200", "55555555000101", d2, 10.0, 30),
		},
		Cols: types.ColumnSet{Supplier: true, Manufacturer: true, Capacity: true},
	}
}

func TestRunPipelineFullTable(t *testing.T) {
	result, err := RunPipeline(fullPipelineTable(), testLogger)
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}

	cols := result.Fact.Cols
	if !cols.OrderID || !cols.InstitutionKey || !cols.ProductKey || !cols.SupplierKey ||
		!cols.ManufacturerKey || !cols.TimeKey {
		t.Errorf("key columns missing after full run: %+v", cols)
	}
	if !cols.ZScore || !cols.Priority || !cols.Intermittency || !cols.Concentration {
		t.Errorf("enrichment columns missing after full run: %+v", cols)
	}

	if len(result.Schema.Instituicoes) != 2 || len(result.Schema.Produtos) != 2 {
		t.Errorf("dimension counts wrong: instituicoes=%d produtos=%d",
			len(result.Schema.Instituicoes), len(result.Schema.Produtos))
	}
	if len(result.Radar) != 4 {
		t.Errorf("radar rows = %d, want 4", len(result.Radar))
	}

	for i, r := range result.Fact.Rows {
		if r.IDPedido == "" {
			t.Errorf("row %d has no id_pedido", i)
		}
	}
}

func TestRunPipelineDegradesWithoutSupplier(t *testing.T) {
	table := fullPipelineTable()
	table.Cols.Supplier = false

	result, err := RunPipeline(table, testLogger)
	if err != nil {
		t.Fatalf("RunPipeline should degrade, not fail: %v", err)
	}

	cols := result.Fact.Cols
	if cols.OrderID {
		t.Error("id_pedido requires the supplier columns, should be skipped")
	}
	if cols.SupplierKey || cols.Concentration {
		t.Error("supplier-dependent stages should be skipped")
	}
	if len(result.Radar) != 0 {
		t.Errorf("radar needs every key, want empty, got %d rows", len(result.Radar))
	}

	// Supplier-independent enrichments still run.
	if !cols.ZScore || !cols.Priority || !cols.Intermittency {
		t.Errorf("independent enrichments should still run: %+v", cols)
	}
}

func TestSummarize(t *testing.T) {
	table := fullPipelineTable()
	summary := Summarize(table)

	if summary.Rows != 4 {
		t.Errorf("rows = %d, want 4", summary.Rows)
	}
	wantSpend := 2.5*100 + 3.5*50 + 2.0*200 + 10.0*30
	if math.Abs(summary.TotalSpend-wantSpend) > 1e-9 {
		t.Errorf("total spend = %v, want %v", summary.TotalSpend, wantSpend)
	}
	if summary.UFs != 1 {
		t.Errorf("distinct UFs = %d, want 1", summary.UFs)
	}
	if summary.Municipalities != 2 {
		t.Errorf("distinct municipalities = %d, want 2", summary.Municipalities)
	}
	if summary.Medicines != 2 {
		t.Errorf("distinct medicines = %d, want 2", summary.Medicines)
	}
	if len(summary.Years) != 1 || summary.Years[0] != 0 {
		// AnoCompra is only derived inside the pipeline; raw rows carry 0.
		t.Errorf("years = %v, want [0] for raw rows", summary.Years)
	}
}

func TestSummarizeAfterPipelineYears(t *testing.T) {
	result, err := RunPipeline(fullPipelineTable(), testLogger)
	if err != nil {
		t.Fatalf("RunPipeline failed: %v", err)
	}

	summary := Summarize(result.Fact)
	if len(summary.Years) != 1 || summary.Years[0] != 2023 {
		t.Errorf("years = %v, want [2023]", summary.Years)
	}
}
