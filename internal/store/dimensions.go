package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DimensionStore upserts the star schema dimension tables. Reruns over the
// same extracts regenerate the same surrogate keys, so conflicts just refresh
// the descriptive attributes.
type DimensionStore struct {
	db *sqlx.DB
}

func (ds *DimensionStore) UpsertInstitution(ctx context.Context, record *InstitutionRecord) error {
	query := `INSERT INTO dim_instituicao (
		id_instituicao,
		cnpj_instituicao,
		nome_instituicao,
		municipio_instituicao,
		uf
	) VALUES (
		:id_instituicao,
		:cnpj_instituicao,
		:nome_instituicao,
		:municipio_instituicao,
		:uf
	) ON CONFLICT (id_instituicao) DO UPDATE SET
		cnpj_instituicao = EXCLUDED.cnpj_instituicao,
		nome_instituicao = EXCLUDED.nome_instituicao,
		municipio_instituicao = EXCLUDED.municipio_instituicao,
		uf = EXCLUDED.uf`

	_, err := ds.db.NamedExecContext(ctx, query, record)
	return err
}

func (ds *DimensionStore) UpsertProduct(ctx context.Context, record *ProductRecord) error {
	query := `INSERT INTO dim_produto (
		id_produto,
		codigo_br,
		descricao_catmat,
		generico,
		unidade_fornecimento
	) VALUES (
		:id_produto,
		:codigo_br,
		:descricao_catmat,
		:generico,
		:unidade_fornecimento
	) ON CONFLICT (id_produto) DO UPDATE SET
		codigo_br = EXCLUDED.codigo_br,
		descricao_catmat = EXCLUDED.descricao_catmat,
		generico = EXCLUDED.generico,
		unidade_fornecimento = EXCLUDED.unidade_fornecimento`

	_, err := ds.db.NamedExecContext(ctx, query, record)
	return err
}

func (ds *DimensionStore) UpsertSupplier(ctx context.Context, record *SupplierRecord) error {
	query := `INSERT INTO dim_fornecedor (
		id_fornecedor,
		cnpj_fornecedor,
		fornecedor
	) VALUES (
		:id_fornecedor,
		:cnpj_fornecedor,
		:fornecedor
	) ON CONFLICT (id_fornecedor) DO UPDATE SET
		cnpj_fornecedor = EXCLUDED.cnpj_fornecedor,
		fornecedor = EXCLUDED.fornecedor`

	_, err := ds.db.NamedExecContext(ctx, query, record)
	return err
}

func (ds *DimensionStore) UpsertManufacturer(ctx context.Context, record *ManufacturerRecord) error {
	query := `INSERT INTO dim_fabricante (
		id_fabricante,
		cnpj_fabricante,
		fabricante
	) VALUES (
		:id_fabricante,
		:cnpj_fabricante,
		:fabricante
	) ON CONFLICT (id_fabricante) DO UPDATE SET
		cnpj_fabricante = EXCLUDED.cnpj_fabricante,
		fabricante = EXCLUDED.fabricante`

	_, err := ds.db.NamedExecContext(ctx, query, record)
	return err
}

func (ds *DimensionStore) UpsertTime(ctx context.Context, record *TimeRecord) error {
	query := `INSERT INTO dim_tempo (
		id_tempo,
		data_completa,
		ano,
		mes,
		dia,
		trimestre
	) VALUES (
		:id_tempo,
		:data_completa,
		:ano,
		:mes,
		:dia,
		:trimestre
	) ON CONFLICT (id_tempo) DO NOTHING`

	_, err := ds.db.NamedExecContext(ctx, query, record)
	return err
}
