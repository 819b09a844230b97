package load

import (
	"context"
	"time"

	"github.com/farxc/procurement_radar/internal/compras"
	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
	"github.com/farxc/procurement_radar/internal/store"
)

const component = "Loader"

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTimeKey(key int) *int {
	if key == 0 {
		return nil
	}
	return &key
}

func optionalDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func factRecord(r *types.Row, now time.Time) *store.FactPurchase {
	return &store.FactPurchase{
		IDPedido:           r.IDPedido,
		IDInstituicao:      r.IDInstituicao,
		IDProduto:          r.IDProduto,
		IDFornecedor:       optionalString(r.IDFornecedor),
		IDFabricante:       optionalString(r.IDFabricante),
		IDTempo:            optionalTimeKey(r.IDTempo),
		ModalidadeCompra:   r.ModalidadeCompra,
		TipoCompra:         r.TipoCompra,
		AnoCompra:          r.AnoCompra,
		DataCompra:         optionalDate(r.Compra),
		Insercao:           optionalDate(r.Insercao),
		Anvisa:             r.Anvisa,
		QtdItensComprados:  r.QtdItensComprados,
		PrecoUnitario:      r.PrecoUnitario,
		PrecoTotal:         r.PrecoTotal,
		PMPIndividual:      r.PMPIndividual,
		PMPMedio:           r.PMPMedio,
		PMPDesvioPadrao:    r.PMPDesvioPadrao,
		ScoreZRisco:        r.ScoreZRisco,
		IndicePriorizacao:  r.IndicePriorizacao,
		DemandaValor:       r.DemandaValor,
		RiscoIntermitencia: r.RiscoIntermitencia,
		MesesComprados:     r.MesesComprados,
		GastoUnicoForn:     r.GastoUnicoForn,
		InsertedAt:         now,
	}
}

// LoadResult dimensions first, then facts, then the radar. Dimension upserts
// must land before the fact rows that reference them.
func LoadResult(ctx context.Context, result *compras.PipelineResult, storage *store.Storage, appLogger *logger.Logger) error {
	appLogger.Info(component, "Starting database load: fact_rows=%d radar_rows=%d", result.Fact.Nrow(), len(result.Radar))

	schema := result.Schema
	for _, d := range schema.Instituicoes {
		record := store.InstitutionRecord(d)
		if err := storage.Dimensions.UpsertInstitution(ctx, &record); err != nil {
			appLogger.Error(component, "Failed to upsert institution %s: %v", d.IDInstituicao, err)
			return err
		}
	}
	for _, d := range schema.Produtos {
		record := store.ProductRecord(d)
		if err := storage.Dimensions.UpsertProduct(ctx, &record); err != nil {
			appLogger.Error(component, "Failed to upsert product %s: %v", d.IDProduto, err)
			return err
		}
	}
	for _, d := range schema.Fornecedores {
		record := store.SupplierRecord(d)
		if err := storage.Dimensions.UpsertSupplier(ctx, &record); err != nil {
			appLogger.Error(component, "Failed to upsert supplier %s: %v", d.IDFornecedor, err)
			return err
		}
	}
	for _, d := range schema.Fabricantes {
		record := store.ManufacturerRecord(d)
		if err := storage.Dimensions.UpsertManufacturer(ctx, &record); err != nil {
			appLogger.Error(component, "Failed to upsert manufacturer %s: %v", d.IDFabricante, err)
			return err
		}
	}
	for _, d := range schema.Tempo {
		record := store.TimeRecord(d)
		if err := storage.Dimensions.UpsertTime(ctx, &record); err != nil {
			appLogger.Error(component, "Failed to upsert time key %d: %v", d.IDTempo, err)
			return err
		}
	}

	if err := storage.Fact.TruncateFacts(ctx); err != nil {
		return err
	}
	now := time.Now()
	inserted := 0
	for i := range result.Fact.Rows {
		record := factRecord(&result.Fact.Rows[i], now)
		if err := storage.Fact.InsertFact(ctx, record); err != nil {
			appLogger.Error(component, "Failed to insert fact row %s: %v", record.IDPedido, err)
			continue
		}
		inserted++
	}
	appLogger.Info(component, "Fact rows loaded: %d of %d", inserted, result.Fact.Nrow())

	if err := storage.Radar.TruncateRadar(ctx); err != nil {
		return err
	}
	for i := range result.Radar {
		r := &result.Radar[i]
		record := &store.RadarRecord{
			IDPedido:               r.IDPedido,
			IDProduto:              r.IDProduto,
			IDInstituicao:          r.IDInstituicao,
			IDFabricante:           optionalString(r.IDFabricante),
			IDFornecedor:           optionalString(r.IDFornecedor),
			IDTempo:                optionalTimeKey(r.IDTempo),
			PMPPagoLinha:           r.PMPPagoLinha,
			PMPBenchmarkReferencia: r.PMPBenchmarkReferencia,
			DesvioOportunidade:     r.DesvioOportunidade,
			EconomiaPorLinha:       r.EconomiaPorLinha,
		}
		if err := storage.Radar.InsertRadar(ctx, record); err != nil {
			appLogger.Error(component, "Failed to insert radar row %s: %v", record.IDPedido, err)
		}
	}

	appLogger.Info(component, "Database load completed")
	return nil
}
