package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

const component = "Exporter"

// Output file names are part of the externally observable contract.
const (
	FactFileName         = "fato_compras_medicamentos.csv"
	RadarFileName        = "mini_fato_radar_oportunidades.csv"
	ConsolidatedFileName = "compras_consolidado_final.csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// writeCSV writes rows as a ;-separated UTF-8-sig file, the encoding the
// downstream spreadsheet consumers expect.
func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(file)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTimeKey(key int) string {
	if key == 0 {
		return ""
	}
	return strconv.Itoa(key)
}

// factLayout lists the fact output columns for the table's current shape:
// generated surrogate keys in creation order, then the purchase context
// columns, then the remaining columns in their prior relative order. Natural
// attributes of built dimensions and dropped residual columns are omitted.
func factLayout(t *types.Table) ([]string, []func(*types.Row) string) {
	header := []string{}
	getters := []func(*types.Row) string{}
	add := func(name string, get func(*types.Row) string) {
		header = append(header, name)
		getters = append(getters, get)
	}

	cols := t.Cols

	// Surrogate keys, identifier first.
	if cols.OrderID {
		add(types.ColIDPedido, func(r *types.Row) string { return r.IDPedido })
	}
	if cols.InstitutionKey {
		add(types.ColIDInstituicao, func(r *types.Row) string { return r.IDInstituicao })
	}
	if cols.ProductKey {
		add(types.ColIDProduto, func(r *types.Row) string { return r.IDProduto })
	}
	if cols.SupplierKey {
		add(types.ColIDFornecedor, func(r *types.Row) string { return r.IDFornecedor })
	}
	if cols.ManufacturerKey {
		add(types.ColIDFabricante, func(r *types.Row) string { return r.IDFabricante })
	}
	if cols.TimeKey {
		add(types.ColIDTempo, func(r *types.Row) string { return formatTimeKey(r.IDTempo) })
	}

	// Purchase context.
	add(types.ColModalidadeCompra, func(r *types.Row) string { return r.ModalidadeCompra })
	add(types.ColTipoCompra, func(r *types.Row) string { return r.TipoCompra })

	// Remaining columns, in their source order.
	add(types.ColAnoCompra, func(r *types.Row) string { return strconv.Itoa(r.AnoCompra) })
	if !cols.InstitutionKey {
		add(types.ColNomeInstituicao, func(r *types.Row) string { return r.NomeInstituicao })
		add(types.ColCNPJInstituicao, func(r *types.Row) string { return r.CNPJInstituicao })
		add(types.ColMunicipioInstituicao, func(r *types.Row) string { return r.MunicipioInstituicao })
		add(types.ColUF, func(r *types.Row) string { return r.UF })
	}
	dateCol := types.ColCompra
	if cols.TimeKey {
		dateCol = types.ColDataCompra
	}
	add(dateCol, func(r *types.Row) string { return formatDate(r.Compra) })
	add(types.ColInsercao, func(r *types.Row) string { return formatDate(r.Insercao) })
	if !cols.ProductKey {
		add(types.ColCodigoBR, func(r *types.Row) string { return r.CodigoBR })
		add(types.ColDescricaoCatmat, func(r *types.Row) string { return r.DescricaoCatmat })
		add(types.ColUnidadeFornecimento, func(r *types.Row) string { return r.UnidadeFornecimento })
		add(types.ColGenerico, func(r *types.Row) string { return r.Generico })
	}
	add(types.ColAnvisa, func(r *types.Row) string { return r.Anvisa })
	if cols.Capacity {
		add(types.ColUnidFornCapacidade, func(r *types.Row) string { return r.UnidFornCapacidade })
		add(types.ColCapacidade, func(r *types.Row) string { return formatFloat(r.Capacidade) })
		add(types.ColUnidadeMedida, func(r *types.Row) string { return r.UnidadeMedida })
	}
	if cols.Supplier {
		add(types.ColCNPJFornecedor, func(r *types.Row) string { return r.CNPJFornecedor })
		add(types.ColFornecedor, func(r *types.Row) string { return r.Fornecedor })
	}
	if cols.Manufacturer {
		add(types.ColCNPJFabricante, func(r *types.Row) string { return r.CNPJFabricante })
		add(types.ColFabricante, func(r *types.Row) string { return r.Fabricante })
	}
	add(types.ColQtdItensComprados, func(r *types.Row) string { return formatFloat(r.QtdItensComprados) })
	add(types.ColPrecoUnitario, func(r *types.Row) string { return formatFloat(r.PrecoUnitario) })
	add(types.ColPrecoTotal, func(r *types.Row) string { return formatFloat(r.PrecoTotal) })

	if cols.ZScore {
		add("pmp_individual", func(r *types.Row) string { return formatFloat(r.PMPIndividual) })
		add("pmp_medio", func(r *types.Row) string { return formatFloat(r.PMPMedio) })
		add("pmp_desvio_padrao", func(r *types.Row) string { return formatFloat(r.PMPDesvioPadrao) })
		add(types.ColScoreZRisco, func(r *types.Row) string { return formatFloat(r.ScoreZRisco) })
	}
	if cols.Priority {
		add(types.ColIndicePriorizacao, func(r *types.Row) string { return formatFloat(r.IndicePriorizacao) })
		add(types.ColDemandaValor, func(r *types.Row) string { return formatFloat(r.DemandaValor) })
	}
	if cols.Intermittency {
		add(types.ColRiscoIntermitencia, func(r *types.Row) string { return formatFloat(r.RiscoIntermitencia) })
		add(types.ColMesesComprados, func(r *types.Row) string { return strconv.Itoa(r.MesesComprados) })
	}
	if cols.Concentration {
		add(types.ColGastoUnicoFornRatio, func(r *types.Row) string { return formatFloat(r.GastoUnicoForn) })
	}

	return header, getters
}

// WriteFact persists the fact table under the given file name, following the
// final column ordering contract.
func WriteFact(outDir, fileName string, t *types.Table, appLogger *logger.Logger) error {
	header, getters := factLayout(t)
	rows := make([][]string, 0, t.Nrow())
	for i := range t.Rows {
		record := make([]string, len(getters))
		for j, get := range getters {
			record[j] = get(&t.Rows[i])
		}
		rows = append(rows, record)
	}

	path := filepath.Join(outDir, fileName)
	if err := writeCSV(path, header, rows); err != nil {
		return err
	}
	appLogger.Info(component, "Fact table exported: path=%s rows=%d cols=%d", path, len(rows), len(header))
	return nil
}

// WriteDimensions persists one CSV per built dimension.
func WriteDimensions(outDir string, schema *types.StarSchema, appLogger *logger.Logger) error {
	if len(schema.Instituicoes) > 0 {
		rows := make([][]string, 0, len(schema.Instituicoes))
		for _, d := range schema.Instituicoes {
			rows = append(rows, []string{d.IDInstituicao, d.CNPJInstituicao, d.NomeInstituicao, d.MunicipioInstituicao, d.UF})
		}
		header := []string{types.ColIDInstituicao, types.ColCNPJInstituicao, types.ColNomeInstituicao, types.ColMunicipioInstituicao, types.ColUF}
		if err := writeCSV(filepath.Join(outDir, "dim_instituicao.csv"), header, rows); err != nil {
			return err
		}
		appLogger.Info(component, "Dimension exported: dim_instituicao rows=%d", len(rows))
	}

	if len(schema.Produtos) > 0 {
		rows := make([][]string, 0, len(schema.Produtos))
		for _, d := range schema.Produtos {
			rows = append(rows, []string{d.IDProduto, d.CodigoBR, d.DescricaoCatmat, d.Generico, d.UnidadeFornecimento})
		}
		header := []string{types.ColIDProduto, types.ColCodigoBR, types.ColDescricaoCatmat, types.ColGenerico, types.ColUnidadeFornecimento}
		if err := writeCSV(filepath.Join(outDir, "dim_produto.csv"), header, rows); err != nil {
			return err
		}
		appLogger.Info(component, "Dimension exported: dim_produto rows=%d", len(rows))
	}

	if len(schema.Fornecedores) > 0 {
		rows := make([][]string, 0, len(schema.Fornecedores))
		for _, d := range schema.Fornecedores {
			rows = append(rows, []string{d.IDFornecedor, d.CNPJFornecedor, d.Fornecedor})
		}
		header := []string{types.ColIDFornecedor, types.ColCNPJFornecedor, types.ColFornecedor}
		if err := writeCSV(filepath.Join(outDir, "dim_fornecedor.csv"), header, rows); err != nil {
			return err
		}
		appLogger.Info(component, "Dimension exported: dim_fornecedor rows=%d", len(rows))
	}

	if len(schema.Fabricantes) > 0 {
		rows := make([][]string, 0, len(schema.Fabricantes))
		for _, d := range schema.Fabricantes {
			rows = append(rows, []string{d.IDFabricante, d.CNPJFabricante, d.Fabricante})
		}
		header := []string{types.ColIDFabricante, types.ColCNPJFabricante, types.ColFabricante}
		if err := writeCSV(filepath.Join(outDir, "dim_fabricante.csv"), header, rows); err != nil {
			return err
		}
		appLogger.Info(component, "Dimension exported: dim_fabricante rows=%d", len(rows))
	}

	if len(schema.Tempo) > 0 {
		rows := make([][]string, 0, len(schema.Tempo))
		for _, d := range schema.Tempo {
			rows = append(rows, []string{
				strconv.Itoa(d.IDTempo),
				formatDate(d.DataCompleta),
				strconv.Itoa(d.Ano),
				strconv.Itoa(d.Mes),
				strconv.Itoa(d.Dia),
				strconv.Itoa(d.Trimestre),
			})
		}
		header := []string{types.ColIDTempo, "data_completa", "ano", "mes", "dia", "trimestre"}
		if err := writeCSV(filepath.Join(outDir, "dim_tempo.csv"), header, rows); err != nil {
			return err
		}
		appLogger.Info(component, "Dimension exported: dim_tempo rows=%d", len(rows))
	}

	return nil
}

// WriteRadar persists the opportunity radar table. An empty radar writes
// nothing: there is no opportunity data to export, which is not a failure.
func WriteRadar(outDir string, radar []types.RadarRow, appLogger *logger.Logger) error {
	if len(radar) == 0 {
		appLogger.Warn(component, "Radar table is empty, nothing to export")
		return nil
	}

	header := []string{
		types.ColIDPedido,
		types.ColIDProduto,
		types.ColIDInstituicao,
		types.ColIDFabricante,
		types.ColIDFornecedor,
		types.ColIDTempo,
		"PMP_Pago_Linha",
		"PMP_Benchmark_Referencia",
		"Desvio_%_Oportunidade",
		"Economia_por_Linha",
	}
	rows := make([][]string, 0, len(radar))
	for _, r := range radar {
		rows = append(rows, []string{
			r.IDPedido,
			r.IDProduto,
			r.IDInstituicao,
			r.IDFabricante,
			r.IDFornecedor,
			formatTimeKey(r.IDTempo),
			formatFloat(r.PMPPagoLinha),
			formatFloat(r.PMPBenchmarkReferencia),
			formatFloat(r.DesvioOportunidade),
			formatFloat(r.EconomiaPorLinha),
		})
	}

	path := filepath.Join(outDir, RadarFileName)
	if err := writeCSV(path, header, rows); err != nil {
		return err
	}
	appLogger.Info(component, "Radar table exported: path=%s rows=%d", path, len(rows))
	return nil
}
