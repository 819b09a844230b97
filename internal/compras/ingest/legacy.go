package ingest

import (
	"strconv"
	"strings"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/compras/utils"
	"github.com/farxc/procurement_radar/internal/logger"
	"github.com/go-gota/gota/dataframe"
)

// legacyHeaderMap standardizes the 2020-2022 extract headers (after space
// normalization) to the unified snake_case schema. The three entity pairs map
// to *_temp names because several legacy years shipped CNPJ and name columns
// swapped; detectSwap resolves which is which per file.
var legacyHeaderMap = map[string]string{
	"Ano":                   types.ColAnoCompra,
	"Código_BR":             types.ColCodigoBR,
	"Descrição_CATMAT":      types.ColDescricaoCatmat,
	"Unidade_de_Fornecimento": types.ColUnidadeFornecimento,
	"Unidade_Fornecimento_Capacidade": types.ColUnidFornCapacidade,
	"Genérico":              types.ColGenerico,
	"Anvisa":                types.ColAnvisa,
	"Compra":                types.ColCompra,
	"Modalidade_da_Compra":  types.ColModalidadeCompra,
	"Inserção":              types.ColInsercao,
	"Tipo_Compra":           types.ColTipoCompra,
	"Fabricante":            "cnpj_fabricante_temp",
	"CNPJ_Fabricante":       "fabricante_temp",
	"Fornecedor":            "cnpj_fornecedor_temp",
	"CNPJ_Fornecedor":       "fornecedor_temp",
	"Nome_Instituição":      "cnpj_instituicao_temp",
	"CNPJ_Instituição":      "nome_instituicao_temp",
	"Município_Instituição": types.ColMunicipioInstituicao,
	"UF":                    types.ColUF,
	"Qtd_Itens_Comprados":   types.ColQtdItensComprados,
	"Preço_Unitário":        types.ColPrecoUnitario,
	"Preço_Total":           types.ColPrecoTotal,
}

func normalizeHeader(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// resolveLegacyColumns maps each standardized column name to its source header.
func resolveLegacyColumns(df *dataframe.DataFrame) map[string]string {
	resolved := make(map[string]string)
	for _, header := range df.Names() {
		normalized := normalizeHeader(header)
		if canonical, ok := legacyHeaderMap[normalized]; ok {
			resolved[canonical] = header
		}
	}
	return resolved
}

// looksLikeNames samples up to 100 values of a column and reports whether the
// content is predominantly alphabetic. Used to detect CNPJ/name swaps.
func looksLikeNames(df *dataframe.DataFrame, header string) bool {
	letters, digits := 0, 0
	limit := df.Nrow()
	if limit > 100 {
		limit = 100
	}
	for i := 0; i < limit; i++ {
		for _, r := range df.Col(header).Elem(i).String() {
			switch {
			case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
				letters++
			case r >= '0' && r <= '9':
				digits++
			}
		}
	}
	return float64(letters) > float64(digits)*0.5
}

// detectSwap resolves a (cnpj_temp, name_temp) pair into its real cnpj and
// name source headers.
func detectSwap(df *dataframe.DataFrame, resolved map[string]string, cnpjTemp, nameTemp, cnpjCol, nameCol string, appLogger *logger.Logger) {
	cnpjHeader, okCNPJ := resolved[cnpjTemp]
	nameHeader, okName := resolved[nameTemp]
	if !okCNPJ || !okName {
		return
	}
	if looksLikeNames(df, cnpjHeader) {
		appLogger.Debug("LegacyIngestor", "CNPJ/name inversion detected for %s", cnpjCol)
		resolved[nameCol] = cnpjHeader
		resolved[cnpjCol] = nameHeader
	} else {
		resolved[cnpjCol] = cnpjHeader
		resolved[nameCol] = nameHeader
	}
	delete(resolved, cnpjTemp)
	delete(resolved, nameTemp)
}

// processLegacyFile standardizes one 2020-2022 extract into typed fact rows.
// The file year (from the file name) backstops a missing Ano column.
func processLegacyFile(path string, year int, appLogger *logger.Logger) (*types.Table, error) {
	const component = "LegacyIngestor"

	df, err := openFlexible(path, legacyAttempts)
	if err != nil {
		return nil, err
	}
	appLogger.Info(component, "Legacy file read: path=%s rows=%d cols=%d", path, df.Nrow(), df.Ncol())

	resolved := resolveLegacyColumns(&df)
	detectSwap(&df, resolved, "cnpj_fornecedor_temp", "fornecedor_temp", types.ColCNPJFornecedor, types.ColFornecedor, appLogger)
	detectSwap(&df, resolved, "cnpj_fabricante_temp", "fabricante_temp", types.ColCNPJFabricante, types.ColFabricante, appLogger)
	detectSwap(&df, resolved, "cnpj_instituicao_temp", "nome_instituicao_temp", types.ColCNPJInstituicao, types.ColNomeInstituicao, appLogger)

	get := func(col string, rowIdx int) string {
		header, ok := resolved[col]
		if !ok {
			return ""
		}
		return utils.CleanText(utils.GetStr(header, rowIdx, &df))
	}

	table := &types.Table{
		Cols: types.ColumnSet{
			Supplier:     resolved[types.ColCNPJFornecedor] != "" && resolved[types.ColFornecedor] != "",
			Manufacturer: resolved[types.ColCNPJFabricante] != "" && resolved[types.ColFabricante] != "",
			// Legacy years lack capacidade/unidade_medida; defaults are
			// added below so the identity hash keeps its full tuple.
			Capacity: true,
		},
	}

	for i := 0; i < df.Nrow(); i++ {
		qtd := utils.ParseFloat(get(types.ColQtdItensComprados, i))
		unitPrice := utils.ParseFloat(get(types.ColPrecoUnitario, i))

		rowYear := year
		if v := get(types.ColAnoCompra, i); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				rowYear = parsed
			}
		}

		unidadeMedida := get(types.ColUnidadeMedida, i)
		if unidadeMedida == "" {
			unidadeMedida = "NA"
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
			Capacidade:           0.0,
			UnidadeMedida:        unidadeMedida,
			CNPJFornecedor:       utils.CleanCNPJ(get(types.ColCNPJFornecedor, i)),
			Fornecedor:           get(types.ColFornecedor, i),
			CNPJFabricante:       utils.CleanCNPJ(get(types.ColCNPJFabricante, i)),
			Fabricante:           get(types.ColFabricante, i),
			QtdItensComprados:    qtd,
			PrecoUnitario:        unitPrice,
			// Legacy totals are unreliable, recompute from the parts.
			PrecoTotal: qtd * unitPrice,
		})
	}

	appLogger.Info(component, "Legacy file standardized: path=%s rows=%d", path, len(table.Rows))
	return table, nil
}
