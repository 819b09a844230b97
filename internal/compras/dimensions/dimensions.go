package dimensions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

const component = "DimensionBuilder"

// naturalKey joins an attribute tuple with a separator that cannot appear in
// the data, so distinct tuples never collide.
func naturalKey(attrs ...string) string {
	return strings.Join(attrs, "\x1f")
}

// surrogateKeys walks the fact rows once and assigns {prefix}{n:05d} keys to
// distinct natural tuples in first-occurrence order. Returns the key per
// tuple, the tuples in assignment order, and a representative row per tuple.
func surrogateKeys(rows []types.Row, prefix string, natural func(*types.Row) string) (map[string]string, []string, map[string]*types.Row) {
	keys := make(map[string]string)
	order := []string{}
	firstSeen := make(map[string]*types.Row)

	for i := range rows {
		nat := natural(&rows[i])
		if _, ok := keys[nat]; ok {
			continue
		}
		keys[nat] = fmt.Sprintf("%s%05d", prefix, len(order)+1)
		order = append(order, nat)
		firstSeen[nat] = &rows[i]
	}
	return keys, order, firstSeen
}

// BuildAndIntegrate derives the descriptive dimensions from the current fact
// table snapshot, integrates their surrogate keys into every fact row and
// marks the natural attribute columns of each built dimension as dropped.
// Optional dimensions whose attribute columns are absent are skipped with a
// warning; no keys are fabricated for them.
func BuildAndIntegrate(t *types.Table, appLogger *logger.Logger) *types.StarSchema {
	schema := &types.StarSchema{}
	if t == nil || len(t.Rows) == 0 {
		appLogger.Warn(component, "Empty fact table, no dimensions to build")
		return schema
	}

	appLogger.Info(component, "Building dimension tables: rows=%d", len(t.Rows))

	if t.Cols.OrderID {
		schema.CreatedKeys = append(schema.CreatedKeys, types.ColIDPedido)
	}

	// Institution (buyer).
	instNatural := func(r *types.Row) string {
		return naturalKey(r.CNPJInstituicao, r.NomeInstituicao, r.MunicipioInstituicao, r.UF)
	}
	instKeys, instOrder, instRows := surrogateKeys(t.Rows, types.PrefixInstituicao, instNatural)
	for _, nat := range instOrder {
		r := instRows[nat]
		schema.Instituicoes = append(schema.Instituicoes, types.InstitutionDim{
			IDInstituicao:        instKeys[nat],
			CNPJInstituicao:      r.CNPJInstituicao,
			NomeInstituicao:      r.NomeInstituicao,
			MunicipioInstituicao: r.MunicipioInstituicao,
			UF:                   r.UF,
		})
	}
	for i := range t.Rows {
		t.Rows[i].IDInstituicao = instKeys[instNatural(&t.Rows[i])]
	}
	t.Cols.InstitutionKey = true
	schema.CreatedKeys = append(schema.CreatedKeys, types.ColIDInstituicao)
	appLogger.Info(component, "Dimension instituicao built: rows=%d", len(schema.Instituicoes))

	// Product (CATMAT item).
	prodNatural := func(r *types.Row) string {
		return naturalKey(r.CodigoBR, r.DescricaoCatmat, r.Generico, r.UnidadeFornecimento)
	}
	prodKeys, prodOrder, prodRows := surrogateKeys(t.Rows, types.PrefixProduto, prodNatural)
	for _, nat := range prodOrder {
		r := prodRows[nat]
		schema.Produtos = append(schema.Produtos, types.ProductDim{
			IDProduto:           prodKeys[nat],
			CodigoBR:            r.CodigoBR,
			DescricaoCatmat:     r.DescricaoCatmat,
			Generico:            r.Generico,
			UnidadeFornecimento: r.UnidadeFornecimento,
		})
	}
	for i := range t.Rows {
		t.Rows[i].IDProduto = prodKeys[prodNatural(&t.Rows[i])]
	}
	t.Cols.ProductKey = true
	schema.CreatedKeys = append(schema.CreatedKeys, types.ColIDProduto)
	appLogger.Info(component, "Dimension produto built: rows=%d", len(schema.Produtos))

	// Supplier, optional.
	if t.Cols.Supplier {
		supNatural := func(r *types.Row) string {
			return naturalKey(r.CNPJFornecedor, r.Fornecedor)
		}
		supKeys, supOrder, supRows := surrogateKeys(t.Rows, types.PrefixFornecedor, supNatural)
		for _, nat := range supOrder {
			r := supRows[nat]
			schema.Fornecedores = append(schema.Fornecedores, types.SupplierDim{
				IDFornecedor:   supKeys[nat],
				CNPJFornecedor: r.CNPJFornecedor,
				Fornecedor:     r.Fornecedor,
			})
		}
		for i := range t.Rows {
			t.Rows[i].IDFornecedor = supKeys[supNatural(&t.Rows[i])]
		}
		t.Cols.SupplierKey = true
		t.Cols.Supplier = false
		schema.CreatedKeys = append(schema.CreatedKeys, types.ColIDFornecedor)
		appLogger.Info(component, "Dimension fornecedor built: rows=%d", len(schema.Fornecedores))
	} else {
		appLogger.Warn(component, "Supplier columns absent (%s, %s), dimension skipped", types.ColCNPJFornecedor, types.ColFornecedor)
	}

	// Manufacturer, optional.
	if t.Cols.Manufacturer {
		fabNatural := func(r *types.Row) string {
			return naturalKey(r.CNPJFabricante, r.Fabricante)
		}
		fabKeys, fabOrder, fabRows := surrogateKeys(t.Rows, types.PrefixFabricante, fabNatural)
		for _, nat := range fabOrder {
			r := fabRows[nat]
			schema.Fabricantes = append(schema.Fabricantes, types.ManufacturerDim{
				IDFabricante:   fabKeys[nat],
				CNPJFabricante: r.CNPJFabricante,
				Fabricante:     r.Fabricante,
			})
		}
		for i := range t.Rows {
			t.Rows[i].IDFabricante = fabKeys[fabNatural(&t.Rows[i])]
		}
		t.Cols.ManufacturerKey = true
		t.Cols.Manufacturer = false
		schema.CreatedKeys = append(schema.CreatedKeys, types.ColIDFabricante)
		appLogger.Info(component, "Dimension fabricante built: rows=%d", len(schema.Fabricantes))
	} else {
		appLogger.Warn(component, "Manufacturer columns absent (%s, %s), dimension skipped", types.ColCNPJFabricante, types.ColFabricante)
	}

	// Time, specialized path: one row per distinct parseable purchase date,
	// key is the date as an 8-digit integer. Rows with an unparseable date
	// stay in the fact with a null (zero) time key.
	schema.Tempo = buildTimeDimension(t, appLogger)
	schema.CreatedKeys = append(schema.CreatedKeys, types.ColIDTempo)

	appLogger.Info(component, "Dimension integration completed: keys=%s", strings.Join(schema.CreatedKeys, ","))
	return schema
}

func timeKey(dateStr string) int {
	key, err := strconv.Atoi(dateStr)
	if err != nil {
		return 0
	}
	return key
}

func buildTimeDimension(t *types.Table, appLogger *logger.Logger) []types.TimeDim {
	seen := make(map[int]bool)
	dims := []types.TimeDim{}

	for i := range t.Rows {
		r := &t.Rows[i]
		if r.Compra.IsZero() {
			r.IDTempo = 0
			continue
		}
		key := timeKey(r.Compra.Format("20060102"))
		r.IDTempo = key
		if seen[key] {
			continue
		}
		seen[key] = true
		dims = append(dims, types.TimeDim{
			IDTempo:      key,
			DataCompleta: r.Compra,
			Ano:          r.Compra.Year(),
			Mes:          int(r.Compra.Month()),
			Dia:          r.Compra.Day(),
			Trimestre:    (int(r.Compra.Month())-1)/3 + 1,
		})
	}

	t.Cols.TimeKey = true
	appLogger.Info(component, "Dimension tempo built: rows=%d", len(dims))
	return dims
}
