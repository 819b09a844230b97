package compras

import (
	"errors"
	"sort"

	"github.com/farxc/procurement_radar/internal/compras/dimensions"
	"github.com/farxc/procurement_radar/internal/compras/enrich"
	"github.com/farxc/procurement_radar/internal/compras/identity"
	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

const component = "Pipeline"

// PipelineResult is everything one pipeline run produces.
type PipelineResult struct {
	Fact   *types.Table
	Schema *types.StarSchema
	Radar  []types.RadarRow
}

// softSkip reports whether err is a degradation the pipeline tolerates: a
// stage with missing inputs logs and becomes a no-op, it never aborts the run.
func softSkip(err error) bool {
	var missing *types.MissingColumnsError
	var noWindow *types.ErrNoWindow
	return errors.As(err, &missing) || errors.As(err, &noWindow)
}

// RunPipeline applies every transformation stage to the consolidated fact
// table, in order: order identity, dimensional modeling, the enrichment
// computations and the opportunity radar. Stages whose required columns are
// absent are skipped; any other stage error aborts the run.
func RunPipeline(t *types.Table, appLogger *logger.Logger) (*PipelineResult, error) {
	appLogger.Info(component, "Starting pipeline run: rows=%d", t.Nrow())

	identity.AssignOrderIDs(t, appLogger)

	schema := dimensions.BuildAndIntegrate(t, appLogger)

	stages := []struct {
		name string
		run  func(*types.Table, *logger.Logger) error
	}{
		{"z-score", enrich.ZScoreRisk},
		{"priority index", enrich.PriorityIndex},
		{"intermittency risk", enrich.IntermittencyRisk},
		{"supplier concentration", enrich.SupplierConcentration},
	}
	for _, stage := range stages {
		if err := stage.run(t, appLogger); err != nil {
			if softSkip(err) {
				appLogger.Warn(component, "Stage skipped (%s): %v", stage.name, err)
				continue
			}
			return nil, err
		}
	}

	radar, err := enrich.OpportunityRadar(t, appLogger)
	if err != nil {
		if !softSkip(err) {
			return nil, err
		}
		appLogger.Warn(component, "Stage skipped (opportunity radar): %v", err)
	}

	appLogger.Info(component, "Pipeline run finished: rows=%d radar=%d keys=%d",
		t.Nrow(), len(radar), len(schema.CreatedKeys))

	return &PipelineResult{Fact: t, Schema: schema, Radar: radar}, nil
}

// RunSummary aggregates the figures logged at the end of an ETL execution.
type RunSummary struct {
	Rows           int
	TotalSpend     float64
	SpendByYear    map[int]float64
	Years          []int
	UFs            int
	Municipalities int
	Medicines      int
}

// Summarize computes the run closing report from the final fact table.
func Summarize(t *types.Table) RunSummary {
	summary := RunSummary{
		Rows:        t.Nrow(),
		SpendByYear: make(map[int]float64),
	}

	ufs := make(map[string]struct{})
	municipalities := make(map[string]struct{})
	medicines := make(map[string]struct{})
	for i := range t.Rows {
		r := &t.Rows[i]
		summary.TotalSpend += r.PrecoTotal
		summary.SpendByYear[r.AnoCompra] += r.PrecoTotal
		if r.UF != "" {
			ufs[r.UF] = struct{}{}
		}
		if r.MunicipioInstituicao != "" {
			municipalities[r.MunicipioInstituicao] = struct{}{}
		}
		switch {
		case r.CodigoBR != "":
			medicines[r.CodigoBR] = struct{}{}
		case r.IDProduto != "":
			medicines[r.IDProduto] = struct{}{}
		}
	}
	summary.UFs = len(ufs)
	summary.Municipalities = len(municipalities)
	summary.Medicines = len(medicines)

	for year := range summary.SpendByYear {
		summary.Years = append(summary.Years, year)
	}
	sort.Ints(summary.Years)

	return summary
}

// LogSummary writes the closing report through the application logger.
func LogSummary(summary RunSummary, appLogger *logger.Logger) {
	appLogger.Info(component, "Run summary: rows=%d total_spend=%.2f", summary.Rows, summary.TotalSpend)
	for _, year := range summary.Years {
		appLogger.Info(component, "Run summary: year=%d spend=%.2f", year, summary.SpendByYear[year])
	}
	appLogger.Info(component, "Run summary: ufs=%d municipios=%d medicamentos=%d",
		summary.UFs, summary.Municipalities, summary.Medicines)
}
