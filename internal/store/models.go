package store

import (
	"time"
)

// FactPurchase represents the 'fato_compras' table. Surrogate keys reference
// the dimension tables; a zero IDTempo stays NULL in the database.
type FactPurchase struct {
	ID                 int64      `db:"id"`
	IDPedido           string     `db:"id_pedido"`
	IDInstituicao      string     `db:"id_instituicao"`
	IDProduto          string     `db:"id_produto"`
	IDFornecedor       *string    `db:"id_fornecedor"`
	IDFabricante       *string    `db:"id_fabricante"`
	IDTempo            *int       `db:"id_tempo"`
	ModalidadeCompra   string     `db:"modalidade_compra"`
	TipoCompra         string     `db:"tipo_compra"`
	AnoCompra          int        `db:"ano_compra"`
	DataCompra         *time.Time `db:"data_compra"`
	Insercao           *time.Time `db:"insercao"`
	Anvisa             string     `db:"anvisa"`
	QtdItensComprados  float64    `db:"qtd_itens_comprados"`
	PrecoUnitario      float64    `db:"preco_unitario"`
	PrecoTotal         float64    `db:"preco_total"`
	PMPIndividual      float64    `db:"pmp_individual"`
	PMPMedio           float64    `db:"pmp_medio"`
	PMPDesvioPadrao    float64    `db:"pmp_desvio_padrao"`
	ScoreZRisco        float64    `db:"score_z_risco"`
	IndicePriorizacao  float64    `db:"indice_priorizacao"`
	DemandaValor       float64    `db:"demanda_valor"`
	RiscoIntermitencia float64    `db:"risco_intermitencia"`
	MesesComprados     int        `db:"meses_comprados_historico"`
	GastoUnicoForn     float64    `db:"gasto_unico_forn"`
	InsertedAt         time.Time  `db:"inserted_at"`
}

// InstitutionRecord represents the 'dim_instituicao' table.
type InstitutionRecord struct {
	IDInstituicao        string `db:"id_instituicao"`
	CNPJInstituicao      string `db:"cnpj_instituicao"`
	NomeInstituicao      string `db:"nome_instituicao"`
	MunicipioInstituicao string `db:"municipio_instituicao"`
	UF                   string `db:"uf"`
}

// ProductRecord represents the 'dim_produto' table.
type ProductRecord struct {
	IDProduto           string `db:"id_produto"`
	CodigoBR            string `db:"codigo_br"`
	DescricaoCatmat     string `db:"descricao_catmat"`
	Generico            string `db:"generico"`
	UnidadeFornecimento string `db:"unidade_fornecimento"`
}

// SupplierRecord represents the 'dim_fornecedor' table.
type SupplierRecord struct {
	IDFornecedor   string `db:"id_fornecedor"`
	CNPJFornecedor string `db:"cnpj_fornecedor"`
	Fornecedor     string `db:"fornecedor"`
}

// ManufacturerRecord represents the 'dim_fabricante' table.
type ManufacturerRecord struct {
	IDFabricante   string `db:"id_fabricante"`
	CNPJFabricante string `db:"cnpj_fabricante"`
	Fabricante     string `db:"fabricante"`
}

// TimeRecord represents the 'dim_tempo' table.
type TimeRecord struct {
	IDTempo      int       `db:"id_tempo"`
	DataCompleta time.Time `db:"data_completa"`
	Ano          int       `db:"ano"`
	Mes          int       `db:"mes"`
	Dia          int       `db:"dia"`
	Trimestre    int       `db:"trimestre"`
}

// RadarRecord represents the 'radar_oportunidades' table.
type RadarRecord struct {
	ID                     int64   `db:"id"`
	IDPedido               string  `db:"id_pedido"`
	IDProduto              string  `db:"id_produto"`
	IDInstituicao          string  `db:"id_instituicao"`
	IDFabricante           *string `db:"id_fabricante"`
	IDFornecedor           *string `db:"id_fornecedor"`
	IDTempo                *int    `db:"id_tempo"`
	PMPPagoLinha           float64 `db:"pmp_pago_linha"`
	PMPBenchmarkReferencia float64 `db:"pmp_benchmark_referencia"`
	DesvioOportunidade     float64 `db:"desvio_oportunidade"`
	EconomiaPorLinha       float64 `db:"economia_por_linha"`
}

// PipelineRunHistory represents the 'pipeline_run_history' table.
type PipelineRunHistory struct {
	ID          int64     `db:"id"`
	SourceDir   string    `db:"source_dir"`
	TriggerType string    `db:"trigger_type"`
	Status      string    `db:"status"`
	FactRows    int       `db:"fact_rows"`
	RadarRows   int       `db:"radar_rows"`
	TotalSpend  float64   `db:"total_spend"`
	ProcessedAt time.Time `db:"processed_at"`
}
