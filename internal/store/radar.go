package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type RadarStore struct {
	db *sqlx.DB
}

func (rs *RadarStore) InsertRadar(ctx context.Context, record *RadarRecord) error {
	query := `INSERT INTO radar_oportunidades (
		id_pedido,
		id_produto,
		id_instituicao,
		id_fabricante,
		id_fornecedor,
		id_tempo,
		pmp_pago_linha,
		pmp_benchmark_referencia,
		desvio_oportunidade,
		economia_por_linha
	) VALUES (
		:id_pedido,
		:id_produto,
		:id_instituicao,
		:id_fabricante,
		:id_fornecedor,
		:id_tempo,
		:pmp_pago_linha,
		:pmp_benchmark_referencia,
		:desvio_oportunidade,
		:economia_por_linha
	)`

	_, err := rs.db.NamedExecContext(ctx, query, record)
	return err
}

func (rs *RadarStore) TruncateRadar(ctx context.Context) error {
	_, err := rs.db.ExecContext(ctx, `TRUNCATE TABLE radar_oportunidades`)
	return err
}
