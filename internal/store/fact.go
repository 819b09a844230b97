package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type FactStore struct {
	db *sqlx.DB
}

func (fs *FactStore) InsertFact(ctx context.Context, fact *FactPurchase) error {
	query := `INSERT INTO fato_compras (
		id_pedido,
		id_instituicao,
		id_produto,
		id_fornecedor,
		id_fabricante,
		id_tempo,
		modalidade_compra,
		tipo_compra,
		ano_compra,
		data_compra,
		insercao,
		anvisa,
		qtd_itens_comprados,
		preco_unitario,
		preco_total,
		pmp_individual,
		pmp_medio,
		pmp_desvio_padrao,
		score_z_risco,
		indice_priorizacao,
		demanda_valor,
		risco_intermitencia,
		meses_comprados_historico,
		gasto_unico_forn,
		inserted_at
	) VALUES (
		:id_pedido,
		:id_instituicao,
		:id_produto,
		:id_fornecedor,
		:id_fabricante,
		:id_tempo,
		:modalidade_compra,
		:tipo_compra,
		:ano_compra,
		:data_compra,
		:insercao,
		:anvisa,
		:qtd_itens_comprados,
		:preco_unitario,
		:preco_total,
		:pmp_individual,
		:pmp_medio,
		:pmp_desvio_padrao,
		:score_z_risco,
		:indice_priorizacao,
		:demanda_valor,
		:risco_intermitencia,
		:meses_comprados_historico,
		:gasto_unico_forn,
		:inserted_at
	)`

	_, err := fs.db.NamedExecContext(ctx, query, fact)
	return err
}

// TruncateFacts clears the fact table before a full reload. The radar table
// references id_pedido, so it cascades.
func (fs *FactStore) TruncateFacts(ctx context.Context) error {
	_, err := fs.db.ExecContext(ctx, `TRUNCATE TABLE fato_compras CASCADE`)
	return err
}
