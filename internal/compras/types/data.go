package types

import (
	"fmt"
	"strings"
	"time"
)

// Column names as they appear in the standardized source extracts and in the
// exported tables. The key prefixes and the YYYYMMDD time key are part of the
// externally observable contract.
const (
	ColAnoCompra            = "ano_compra"
	ColNomeInstituicao      = "nome_instituicao"
	ColCNPJInstituicao      = "cnpj_instituicao"
	ColMunicipioInstituicao = "municipio_instituicao"
	ColUF                   = "uf"
	ColCompra               = "compra"
	ColDataCompra           = "data_compra"
	ColInsercao             = "insercao"
	ColCodigoBR             = "codigo_br"
	ColDescricaoCatmat      = "descricao_catmat"
	ColUnidadeFornecimento  = "unidade_fornecimento"
	ColGenerico             = "generico"
	ColAnvisa               = "anvisa"
	ColModalidadeCompra     = "modalidade_compra"
	ColTipoCompra           = "tipo_compra"
	ColUnidFornCapacidade   = "unidade_fornecimento_capacidade"
	ColCapacidade           = "capacidade"
	ColUnidadeMedida        = "unidade_medida"
	ColCNPJFornecedor       = "cnpj_fornecedor"
	ColFornecedor           = "fornecedor"
	ColCNPJFabricante       = "cnpj_fabricante"
	ColFabricante           = "fabricante"
	ColQtdItensComprados    = "qtd_itens_comprados"
	ColPrecoUnitario        = "preco_unitario"
	ColPrecoTotal           = "preco_total"

	ColIDPedido      = "id_pedido"
	ColIDInstituicao = "id_instituicao"
	ColIDProduto     = "id_produto"
	ColIDFornecedor  = "id_fornecedor"
	ColIDFabricante  = "id_fabricante"
	ColIDTempo       = "id_tempo"

	ColScoreZRisco         = "score_z_risco"
	ColIndicePriorizacao   = "indice_priorizacao"
	ColDemandaValor        = "demanda_valor"
	ColRiscoIntermitencia  = "Risco_Intermitencia"
	ColMesesComprados      = "Meses_Comprados_Historico"
	ColGastoUnicoFornRatio = "%_Gasto_Unico_Forn"
)

// Surrogate key prefixes, one per dimension type.
const (
	PrefixInstituicao = "Ins"
	PrefixProduto     = "Pro"
	PrefixFornecedor  = "For"
	PrefixFabricante  = "Fab"
)

// Row is one procurement line item of the fact table in progress. Natural
// attributes are populated by ingestion; the remaining fields are derived by
// the identity, dimension and enrichment stages.
type Row struct {
	AnoCompra            int
	NomeInstituicao      string
	CNPJInstituicao      string
	MunicipioInstituicao string
	UF                   string
	Compra               time.Time
	Insercao             time.Time
	CodigoBR             string
	DescricaoCatmat      string
	UnidadeFornecimento  string
	Generico             string
	Anvisa               string
	ModalidadeCompra     string
	TipoCompra           string

	// Hash-only capacity descriptor, dropped after identity assignment.
	UnidFornCapacidade string
	Capacidade         float64
	UnidadeMedida      string

	CNPJFornecedor string
	Fornecedor     string
	CNPJFabricante string
	Fabricante     string

	QtdItensComprados float64
	PrecoUnitario     float64
	PrecoTotal        float64

	IDPedido      string
	IDInstituicao string
	IDProduto     string
	IDFornecedor  string
	IDFabricante  string
	IDTempo       int

	PMPIndividual   float64
	PMPMedio        float64
	PMPDesvioPadrao float64
	ScoreZRisco     float64

	IndicePriorizacao float64
	DemandaValor      float64

	RiscoIntermitencia float64
	MesesComprados     int

	GastoUnicoForn float64
}

// ColumnSet records which optional column groups the fact table currently
// carries. Stages validate their requirements against it at the boundary and
// flip the flags for the columns they produce or drop.
type ColumnSet struct {
	Supplier     bool // cnpj_fornecedor, fornecedor
	Manufacturer bool // cnpj_fabricante, fabricante
	Capacity     bool // unidade_fornecimento_capacidade, capacidade, unidade_medida

	OrderID         bool
	InstitutionKey  bool
	ProductKey      bool
	SupplierKey     bool
	ManufacturerKey bool
	TimeKey         bool

	ZScore        bool
	Priority      bool
	Intermittency bool
	Concentration bool
}

// Table is the fact table in progress: the row set plus the column groups it
// carries. Stages mutate it in place, one at a time.
type Table struct {
	Rows []Row
	Cols ColumnSet
}

func (t *Table) Nrow() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// MissingColumnsError marks a soft stage failure: a stage's required columns
// are absent, the stage is a no-op and the pipeline continues.
type MissingColumnsError struct {
	Stage   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("stage %s: required columns missing: %s", e.Stage, strings.Join(e.Columns, ", "))
}

// ErrNoWindow reports that the global observation window could not be
// determined because no row carries a valid purchase date.
type ErrNoWindow struct {
	Stage string
}

func (e *ErrNoWindow) Error() string {
	return fmt.Sprintf("stage %s: no valid purchase dates, observation window undefined", e.Stage)
}

// InstitutionDim is one row of the dim_instituicao table.
type InstitutionDim struct {
	IDInstituicao        string
	CNPJInstituicao      string
	NomeInstituicao      string
	MunicipioInstituicao string
	UF                   string
}

// ProductDim is one row of the dim_produto table.
type ProductDim struct {
	IDProduto           string
	CodigoBR            string
	DescricaoCatmat     string
	Generico            string
	UnidadeFornecimento string
}

// SupplierDim is one row of the dim_fornecedor table.
type SupplierDim struct {
	IDFornecedor   string
	CNPJFornecedor string
	Fornecedor     string
}

// ManufacturerDim is one row of the dim_fabricante table.
type ManufacturerDim struct {
	IDFabricante   string
	CNPJFabricante string
	Fabricante     string
}

// TimeDim is one row of the dim_tempo table. IDTempo is the date formatted as
// an 8-digit integer (YYYYMMDD).
type TimeDim struct {
	IDTempo      int
	DataCompleta time.Time
	Ano          int
	Mes          int
	Dia          int
	Trimestre    int
}

// StarSchema bundles the dimension tables built from one fact table snapshot.
// A nil/empty slice means the dimension was skipped (absent attributes).
type StarSchema struct {
	Instituicoes []InstitutionDim
	Produtos     []ProductDim
	Fornecedores []SupplierDim
	Fabricantes  []ManufacturerDim
	Tempo        []TimeDim

	// Surrogate key columns integrated into the fact, in creation order.
	CreatedKeys []string
}

// RadarRow is one line of the opportunity radar table: the price paid against
// the group's median benchmark. Never fed back into the fact table.
type RadarRow struct {
	IDPedido               string
	IDProduto              string
	IDInstituicao          string
	IDFabricante           string
	IDFornecedor           string
	IDTempo                int
	PMPPagoLinha           float64
	PMPBenchmarkReferencia float64
	DesvioOportunidade     float64
	EconomiaPorLinha       float64
}
