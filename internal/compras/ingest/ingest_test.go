package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/farxc/procurement_radar/internal/logger"
)

var testLogger = &logger.Logger{MinLevel: logger.LevelError}

func TestFileYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"compras_2021.csv", 2021},
		{"/data/raw/medicamentos_2023_v2.csv", 2023},
		{"compras.csv", 0},
	}
	for _, c := range cases {
		if got := fileYear(c.in); got != c.want {
			t.Errorf("fileYear(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{" Código BR ", "Código_BR"},
		{"Unidade de Fornecimento", "Unidade_de_Fornecimento"},
		{"Qtd  Itens  Comprados", "Qtd_Itens_Comprados"},
	}
	for _, c := range cases {
		if got := normalizeHeader(c.in); got != c.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

const legacyCSV = `Ano;Compra;Inserção;Código BR;Descrição CATMAT;Unidade de Fornecimento;Genérico;Anvisa;Modalidade da Compra;Tipo Compra;Fornecedor;CNPJ Fornecedor;Fabricante;CNPJ Fabricante;Nome Instituição;CNPJ Instituição;Município Instituição;UF;Qtd Itens Comprados;Preço Unitário;Preço Total
2021;15/03/2021;20/03/2021;BR0271700;DIPIRONA 500MG;COMPRIMIDO;S;1234567890123;PREGÃO;A;FARMA LTDA;44444444000101;LAB SA;55555555000101;HOSPITAL MUNICIPAL;11111111000101;SAO PAULO;SP;100;2,50;999,99
2021;20/04/2021;25/04/2021;BR0300000;AMOXICILINA;CAPSULA;N;;PREGÃO;J;DROGA SA;66666666000101;LAB SA;55555555000101;HOSPITAL MUNICIPAL;11111111000101;SAO PAULO;SP;50;1.234,56;0
`

const modernCSV = `ano_compra,compra,insercao,codigo_br,descricao_catmat,unidade_fornecimento,unidade_fornecimento_capacidade,capacidade,unidade_medida,generico,anvisa,modalidade_compra,tipo_compra,cnpj_fornecedor,fornecedor,cnpj_fabricante,fabricante,nome_instituicao,cnpj_instituicao,municipio_instituicao,uf,qtd_itens_comprados,preco_unitario,preco_total
2023,2023-06-10,2023-06-12,271700,DIPIRONA 500MG,COMPRIMIDO,COMPRIMIDO 500 MG,500,MG,SIM,1234567890123,PREGÃO,ADMINISTRATIVA,44444444000101,FARMA LTDA,55555555000101,LAB SA,HOSPITAL MUNICIPAL,11111111000101,SAO PAULO,SP,200,3.10,620.00
`

func TestLoadDirectoryConsolidatesFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compras_2021.csv", legacyCSV)
	writeFile(t, dir, "compras_2023.csv", modernCSV)
	writeFile(t, dir, "notes.txt", "ignored")

	table, err := LoadDirectory(dir, testLogger)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	if table.Nrow() != 3 {
		t.Fatalf("consolidated rows = %d, want 3", table.Nrow())
	}
	if !table.Cols.Supplier || !table.Cols.Manufacturer || !table.Cols.Capacity {
		t.Errorf("column flags wrong: %+v", table.Cols)
	}

	// Sorted by purchase date: both 2021 rows precede the 2023 row.
	if !table.Rows[0].Compra.Equal(time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first row date = %v, want 2021-03-15", table.Rows[0].Compra)
	}
	if table.Rows[2].AnoCompra != 2023 {
		t.Errorf("last row year = %d, want 2023", table.Rows[2].AnoCompra)
	}
}

func TestLoadDirectoryLegacyStandardization(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compras_2021.csv", legacyCSV)

	table, err := LoadDirectory(dir, testLogger)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	r := table.Rows[0]
	if r.CodigoBR != "271700" {
		t.Errorf("codigo_br = %q, want 271700 (BR prefix stripped)", r.CodigoBR)
	}
	if r.Generico != "SIM" {
		t.Errorf("generico = %q, want SIM", r.Generico)
	}
	if r.TipoCompra != "ADMINISTRATIVA" {
		t.Errorf("tipo_compra = %q, want ADMINISTRATIVA", r.TipoCompra)
	}
	if r.CNPJFornecedor != "44444444000101" {
		t.Errorf("cnpj_fornecedor = %q, swap detection failed", r.CNPJFornecedor)
	}
	if r.Fornecedor != "FARMA LTDA" {
		t.Errorf("fornecedor = %q, swap detection failed", r.Fornecedor)
	}
	if r.CNPJInstituicao != "11111111000101" {
		t.Errorf("cnpj_instituicao = %q", r.CNPJInstituicao)
	}
	if r.PrecoUnitario != 2.5 {
		t.Errorf("preco_unitario = %v, want 2.5 (comma decimal)", r.PrecoUnitario)
	}
	// Published totals are unreliable in legacy files, always recomputed.
	if r.PrecoTotal != 250 {
		t.Errorf("preco_total = %v, want 100*2.5", r.PrecoTotal)
	}
	if r.UnidadeMedida != "NA" {
		t.Errorf("unidade_medida = %q, want NA placeholder", r.UnidadeMedida)
	}

	second := table.Rows[1]
	if second.PrecoUnitario != 1234.56 {
		t.Errorf("regional thousands parsing = %v, want 1234.56", second.PrecoUnitario)
	}
}

func TestLoadDirectoryModernStandardization(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compras_2023.csv", modernCSV)

	table, err := LoadDirectory(dir, testLogger)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}

	r := table.Rows[0]
	if r.Capacidade != 500 || r.UnidadeMedida != "MG" {
		t.Errorf("capacity columns not read: %v %q", r.Capacidade, r.UnidadeMedida)
	}
	if r.PrecoTotal != 620 {
		t.Errorf("modern preco_total = %v, want the published 620", r.PrecoTotal)
	}
	if !r.Compra.Equal(time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("compra = %v", r.Compra)
	}
}

func TestLoadDirectoryEmptyIsHardFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "no csv here")

	_, err := LoadDirectory(dir, testLogger)
	if err == nil || !strings.Contains(err.Error(), "no CSV files") {
		t.Fatalf("expected hard failure for empty directory, got %v", err)
	}
}

func TestLoadDirectoryAllFilesBrokenIsHardFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "compras_2021.csv", "")

	_, err := LoadDirectory(dir, testLogger)
	if err == nil {
		t.Fatal("expected hard failure when nothing consolidates")
	}
}
