package identity

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/procurement_radar/internal/compras/enrich"
	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/compras/utils"
	"github.com/farxc/procurement_radar/internal/logger"
)

const component = "IdentityAssigner"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// orderHash builds the underscore-delimited tuple of the eleven identifying
// fields and digests it. Identical tuples always produce the identical id.
func orderHash(r *types.Row) string {
	key := strings.Join([]string{
		utils.CNPJRoot(r.CNPJInstituicao),
		formatDate(r.Compra),
		strings.TrimSpace(r.CodigoBR),
		utils.CNPJRoot(r.CNPJFornecedor),
		formatNumber(r.QtdItensComprados),
		formatNumber(r.PrecoUnitario),
		utils.CNPJRoot(r.CNPJFabricante),
		formatDate(r.Insercao),
		strings.TrimSpace(r.UnidFornCapacidade),
		formatNumber(r.Capacidade),
		strings.TrimSpace(r.UnidadeMedida),
	}, "_")

	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// AssignOrderIDs computes the content-derived id_pedido for every row,
// establishing the grain of the fact table. Hashing requires all eleven input
// columns; when any group is absent the hash is skipped (logged, pipeline
// proceeds without the identifier). Either way the hash-only capacity columns
// are dropped afterwards, the z-score stage is re-invoked (it derives
// ano_compra) and the table is left in its final deterministic order:
// purchase date ascending, catalog code ascending, ties in input order.
func AssignOrderIDs(t *types.Table, appLogger *logger.Logger) {
	if t == nil || len(t.Rows) == 0 {
		appLogger.Warn(component, "Empty fact table, nothing to identify")
		return
	}

	missing := []string{}
	if !t.Cols.Supplier {
		missing = append(missing, types.ColCNPJFornecedor)
	}
	if !t.Cols.Manufacturer {
		missing = append(missing, types.ColCNPJFabricante)
	}
	if !t.Cols.Capacity {
		missing = append(missing, types.ColUnidFornCapacidade, types.ColCapacidade, types.ColUnidadeMedida)
	}

	if len(missing) > 0 {
		appLogger.Error(component, "Hash input columns missing, skipping id_pedido: columns=%s", strings.Join(missing, ","))
	} else {
		for i := range t.Rows {
			t.Rows[i].IDPedido = orderHash(&t.Rows[i])
		}
		t.Cols.OrderID = true
		appLogger.Info(component, "id_pedido assigned: rows=%d", len(t.Rows))
	}

	// The capacity descriptor columns exist only to feed the hash.
	if t.Cols.Capacity {
		for i := range t.Rows {
			t.Rows[i].UnidFornCapacidade = ""
			t.Rows[i].Capacidade = 0
			t.Rows[i].UnidadeMedida = ""
		}
		t.Cols.Capacity = false
		appLogger.Debug(component, "Residual capacity columns dropped")
	}

	if err := enrich.ZScoreRisk(t, appLogger); err != nil {
		appLogger.Error(component, "Z-score recomputation failed: error=%v", err)
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := &t.Rows[i], &t.Rows[j]
		if !a.Compra.Equal(b.Compra) {
			return a.Compra.Before(b.Compra)
		}
		return a.CodigoBR < b.CodigoBR
	})
	appLogger.Info(component, "Fact table sorted by purchase date and catalog code: rows=%d", len(t.Rows))
}
