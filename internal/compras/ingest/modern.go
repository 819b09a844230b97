package ingest

import (
	"strconv"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/compras/utils"
	"github.com/farxc/procurement_radar/internal/logger"
)

// processModernFile standardizes one 2023+ extract. These files already carry
// the unified snake_case headers; the work is the row-level repairs: CNPJs
// damaged into scientific notation, numeric and date coercion with zero/null
// sentinels, and flag normalization.
func processModernFile(path string, year int, appLogger *logger.Logger) (*types.Table, error) {
	const component = "ModernIngestor"

	df, err := openFlexible(path, modernAttempts)
	if err != nil {
		return nil, err
	}
	appLogger.Info(component, "Modern file read: path=%s rows=%d cols=%d", path, df.Nrow(), df.Ncol())

	has := func(col string) bool { return utils.HasColumn(&df, col) }
	get := func(col string, rowIdx int) string {
		return utils.CleanText(utils.GetStr(col, rowIdx, &df))
	}

	table := &types.Table{
		Cols: types.ColumnSet{
			Supplier:     has(types.ColCNPJFornecedor) && has(types.ColFornecedor),
			Manufacturer: has(types.ColCNPJFabricante) && has(types.ColFabricante),
			Capacity:     has(types.ColUnidFornCapacidade) && has(types.ColCapacidade) && has(types.ColUnidadeMedida),
		},
	}

	for i := 0; i < df.Nrow(); i++ {
		rowYear := year
		if v := get(types.ColAnoCompra, i); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				rowYear = parsed
			}
		}

		table.Rows = append(table.Rows, types.Row{
			AnoCompra:            rowYear,
			NomeInstituicao:      get(types.ColNomeInstituicao, i),
			CNPJInstituicao:      utils.CleanCNPJ(get(types.ColCNPJInstituicao, i)),
			MunicipioInstituicao: get(types.ColMunicipioInstituicao, i),
			UF:                   get(types.ColUF, i),
			Compra:               utils.ParseDate(get(types.ColCompra, i)),
			Insercao:             utils.ParseDate(get(types.ColInsercao, i)),
			CodigoBR:             utils.CleanCodigoBR(get(types.ColCodigoBR, i)),
			DescricaoCatmat:      get(types.ColDescricaoCatmat, i),
			UnidadeFornecimento:  get(types.ColUnidadeFornecimento, i),
			Generico:             utils.NormalizeGenerico(get(types.ColGenerico, i)),
			Anvisa:               utils.CleanCNPJ(get(types.ColAnvisa, i)),
			ModalidadeCompra:     get(types.ColModalidadeCompra, i),
			TipoCompra:           utils.NormalizeTipoCompra(get(types.ColTipoCompra, i)),
			UnidFornCapacidade:   get(types.ColUnidFornCapacidade, i),
			Capacidade:           utils.ParseFloat(get(types.ColCapacidade, i)),
			UnidadeMedida:        get(types.ColUnidadeMedida, i),
			CNPJFornecedor:       utils.CleanCNPJ(get(types.ColCNPJFornecedor, i)),
			Fornecedor:           get(types.ColFornecedor, i),
			CNPJFabricante:       utils.CleanCNPJ(get(types.ColCNPJFabricante, i)),
			Fabricante:           get(types.ColFabricante, i),
			QtdItensComprados:    utils.ParseFloat(get(types.ColQtdItensComprados, i)),
			PrecoUnitario:        utils.ParseFloat(get(types.ColPrecoUnitario, i)),
			PrecoTotal:           utils.ParseFloat(get(types.ColPrecoTotal, i)),
		})
	}

	appLogger.Info(component, "Modern file standardized: path=%s rows=%d", path, len(table.Rows))
	return table, nil
}
