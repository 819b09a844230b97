package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type AnalyticsStore struct {
	db *sqlx.DB
}

// AnalyticsFilter narrows the analytic queries. Empty UFs and a zero Year
// mean no filtering.
type AnalyticsFilter struct {
	UFs  []string
	Year int
}

type Opportunity struct {
	IDPedido               string  `db:"id_pedido" json:"id_pedido"`
	DescricaoCatmat        string  `db:"descricao_catmat" json:"descricao_catmat"`
	NomeInstituicao        string  `db:"nome_instituicao" json:"nome_instituicao"`
	UF                     string  `db:"uf" json:"uf"`
	Ano                    int     `db:"ano" json:"ano"`
	PMPPagoLinha           float64 `db:"pmp_pago_linha" json:"pmp_pago_linha"`
	PMPBenchmarkReferencia float64 `db:"pmp_benchmark_referencia" json:"pmp_benchmark_referencia"`
	DesvioOportunidade     float64 `db:"desvio_oportunidade" json:"desvio_oportunidade"`
	EconomiaPorLinha       float64 `db:"economia_por_linha" json:"economia_por_linha"`
}

type PriorityProduct struct {
	IDProduto         string  `db:"id_produto" json:"id_produto"`
	CodigoBR          string  `db:"codigo_br" json:"codigo_br"`
	DescricaoCatmat   string  `db:"descricao_catmat" json:"descricao_catmat"`
	IndicePriorizacao float64 `db:"indice_priorizacao" json:"indice_priorizacao"`
	DemandaValor      float64 `db:"demanda_valor" json:"demanda_valor"`
}

type ConcentratedProduct struct {
	IDProduto       string  `db:"id_produto" json:"id_produto"`
	CodigoBR        string  `db:"codigo_br" json:"codigo_br"`
	DescricaoCatmat string  `db:"descricao_catmat" json:"descricao_catmat"`
	GastoUnicoForn  float64 `db:"gasto_unico_forn" json:"gasto_unico_forn"`
	GastoTotal      float64 `db:"gasto_total" json:"gasto_total"`
}

type YearlySpend struct {
	Ano        int     `db:"ano_compra" json:"ano"`
	GastoTotal float64 `db:"gasto_total" json:"gasto_total"`
	Compras    int     `db:"compras" json:"compras"`
}

// GetTopOpportunities lists the purchase lines with the largest overpayment
// against the median benchmark, most expensive first.
func (as *AnalyticsStore) GetTopOpportunities(ctx context.Context, f AnalyticsFilter, limit int) ([]Opportunity, error) {
	query := `
	SELECT
		r.id_pedido,
		p.descricao_catmat,
		i.nome_instituicao,
		i.uf,
		COALESCE(t.ano, 0) AS ano,
		r.pmp_pago_linha,
		r.pmp_benchmark_referencia,
		r.desvio_oportunidade,
		r.economia_por_linha
	FROM
		radar_oportunidades r
	JOIN
		dim_produto p ON p.id_produto = r.id_produto
	JOIN
		dim_instituicao i ON i.id_instituicao = r.id_instituicao
	LEFT JOIN
		dim_tempo t ON t.id_tempo = r.id_tempo
	WHERE
		r.economia_por_linha > 0
		AND ($1 = 0 OR t.ano = $1)
		AND (cardinality($2::text[]) = 0 OR i.uf = ANY($2))
	ORDER BY
		r.economia_por_linha DESC
	LIMIT $3`

	ufs := f.UFs
	if ufs == nil {
		ufs = []string{}
	}
	opportunities := []Opportunity{}
	if err := as.db.SelectContext(ctx, &opportunities, query, f.Year, pq.Array(ufs), limit); err != nil {
		return nil, fmt.Errorf("failed to query top opportunities: %w", err)
	}
	return opportunities, nil
}

// GetPriorityProducts ranks medicines by the composite prioritization index.
func (as *AnalyticsStore) GetPriorityProducts(ctx context.Context, limit int) ([]PriorityProduct, error) {
	query := `
	SELECT
		p.id_produto,
		p.codigo_br,
		p.descricao_catmat,
		MAX(f.indice_priorizacao) AS indice_priorizacao,
		MAX(f.demanda_valor) AS demanda_valor
	FROM
		fato_compras f
	JOIN
		dim_produto p ON p.id_produto = f.id_produto
	GROUP BY
		p.id_produto,
		p.codigo_br,
		p.descricao_catmat
	ORDER BY
		indice_priorizacao DESC
	LIMIT $1`

	products := []PriorityProduct{}
	if err := as.db.SelectContext(ctx, &products, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query priority products: %w", err)
	}
	return products, nil
}

// GetConcentrationRanking lists medicines whose spend share on a single
// supplier is at or above the given threshold.
func (as *AnalyticsStore) GetConcentrationRanking(ctx context.Context, threshold float64, limit int) ([]ConcentratedProduct, error) {
	query := `
	SELECT
		p.id_produto,
		p.codigo_br,
		p.descricao_catmat,
		MAX(f.gasto_unico_forn) AS gasto_unico_forn,
		SUM(f.preco_total) AS gasto_total
	FROM
		fato_compras f
	JOIN
		dim_produto p ON p.id_produto = f.id_produto
	GROUP BY
		p.id_produto,
		p.codigo_br,
		p.descricao_catmat
	HAVING
		MAX(f.gasto_unico_forn) >= $1
	ORDER BY
		gasto_unico_forn DESC,
		gasto_total DESC
	LIMIT $2`

	products := []ConcentratedProduct{}
	if err := as.db.SelectContext(ctx, &products, query, threshold, limit); err != nil {
		return nil, fmt.Errorf("failed to query concentration ranking: %w", err)
	}
	return products, nil
}

// GetSpendByYear aggregates total spend and purchase counts per year.
func (as *AnalyticsStore) GetSpendByYear(ctx context.Context) ([]YearlySpend, error) {
	query := `
	SELECT
		ano_compra,
		SUM(preco_total) AS gasto_total,
		COUNT(*) AS compras
	FROM
		fato_compras
	GROUP BY
		ano_compra
	ORDER BY
		ano_compra`

	spend := []YearlySpend{}
	if err := as.db.SelectContext(ctx, &spend, query); err != nil {
		return nil, fmt.Errorf("failed to query spend by year: %w", err)
	}
	return spend, nil
}
