package enrich

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

var testLogger = &logger.Logger{MinLevel: logger.LevelError}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func priceRow(codigo string, date time.Time, total, qty float64) types.Row {
	return types.Row{
		CodigoBR:          codigo,
		Compra:            date,
		PrecoTotal:        total,
		QtdItensComprados: qty,
	}
}

func TestZScoreRiskTwoMemberGroup(t *testing.T) {
	d := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	table := &types.Table{
		Rows: []types.Row{
			priceRow("100", d, 10, 1),
			priceRow("100", d, 30, 1),
		},
	}

	if err := ZScoreRisk(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mean 20, sample std sqrt(200); z = +-10/14.1421..., rounded to 2 places
	if got := table.Rows[0].ScoreZRisco; !almostEqual(got, -0.71) {
		t.Errorf("low-price z = %v, want -0.71", got)
	}
	if got := table.Rows[1].ScoreZRisco; !almostEqual(got, 0.71) {
		t.Errorf("high-price z = %v, want 0.71", got)
	}
	if got := table.Rows[0].PMPMedio; !almostEqual(got, 20) {
		t.Errorf("group mean = %v, want 20", got)
	}
	if !table.Cols.ZScore {
		t.Error("ZScore column flag should be set")
	}
}

func TestZScoreRiskSingletonGroupIsZero(t *testing.T) {
	d := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	table := &types.Table{Rows: []types.Row{priceRow("100", d, 50, 2)}}

	if err := ZScoreRisk(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := table.Rows[0]
	if !almostEqual(r.PMPIndividual, 25) {
		t.Errorf("pmp_individual = %v, want 25", r.PMPIndividual)
	}
	if r.ScoreZRisco != 0 || r.PMPDesvioPadrao != 0 {
		t.Errorf("singleton group should have zero std and z, got std=%v z=%v", r.PMPDesvioPadrao, r.ScoreZRisco)
	}
}

func TestZScoreRiskEqualPricesAreZero(t *testing.T) {
	d := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	table := &types.Table{
		Rows: []types.Row{
			priceRow("100", d, 20, 2),
			priceRow("100", d, 40, 4),
			priceRow("100", d, 10, 1),
		},
	}

	if err := ZScoreRisk(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, r := range table.Rows {
		if r.ScoreZRisco != 0 {
			t.Errorf("row %d: identical unit prices should z-score to 0, got %v", i, r.ScoreZRisco)
		}
	}
}

func TestZScoreRiskYearSplitsGroups(t *testing.T) {
	table := &types.Table{
		Rows: []types.Row{
			priceRow("100", time.Date(2022, 4, 1, 0, 0, 0, 0, time.UTC), 10, 1),
			priceRow("100", time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC), 30, 1),
		},
	}

	if err := ZScoreRisk(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Different purchase years, so each row is a singleton group.
	if table.Rows[0].ScoreZRisco != 0 || table.Rows[1].ScoreZRisco != 0 {
		t.Error("cross-year rows should not share a group")
	}
	if table.Rows[0].AnoCompra != 2022 || table.Rows[1].AnoCompra != 2023 {
		t.Error("ano_compra should be re-derived from the purchase date")
	}
}

func TestZScoreRiskZeroQuantity(t *testing.T) {
	d := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	table := &types.Table{Rows: []types.Row{priceRow("100", d, 100, 0)}}

	if err := ZScoreRisk(table, testLogger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0].PMPIndividual != 0 {
		t.Errorf("zero quantity should yield zero pmp_individual, got %v", table.Rows[0].PMPIndividual)
	}
}

func TestZScoreRiskEmptyTable(t *testing.T) {
	err := ZScoreRisk(&types.Table{}, testLogger)
	var missing *types.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("empty table should return MissingColumnsError, got %v", err)
	}
}
