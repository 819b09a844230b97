package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/farxc/procurement_radar/internal/compras/types"
	"github.com/farxc/procurement_radar/internal/logger"
)

const component = "Ingestor"

var yearPattern = regexp.MustCompile(`20\d{2}`)

const legacyLastYear = 2022

// fileYear extracts the reference year from a raw file name, 0 when absent.
func fileYear(name string) int {
	match := yearPattern.FindString(filepath.Base(name))
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}

// LoadDirectory ingests every yearly CSV extract under rawDir, routes each
// file to the format-specific standardizer (2020-2022 legacy layout vs 2023+
// unified layout) and consolidates the results into one fact table sorted by
// purchase date. An empty consolidation is a hard failure: the pipeline has
// nothing to model.
func LoadDirectory(rawDir string, appLogger *logger.Logger) (*types.Table, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw directory %s: %w", rawDir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(rawDir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", rawDir)
	}
	appLogger.Info(component, "Raw files found: dir=%s count=%d", rawDir, len(paths))

	consolidated := &types.Table{}
	processedYears := []int{}

	for _, path := range paths {
		year := fileYear(path)
		if year == 0 {
			appLogger.Warn(component, "Year not detected in file name, skipping: path=%s", path)
			continue
		}

		var table *types.Table
		var procErr error
		if year <= legacyLastYear {
			table, procErr = processLegacyFile(path, year, appLogger)
		} else {
			table, procErr = processModernFile(path, year, appLogger)
		}
		if procErr != nil {
			appLogger.Error(component, "File processing failed, skipping: path=%s error=%v", path, procErr)
			continue
		}
		if table.Nrow() == 0 {
			appLogger.Warn(component, "File produced no records, skipping: path=%s", path)
			continue
		}

		appendTable(consolidated, table)
		processedYears = append(processedYears, year)
		appLogger.Info(component, "Year consolidated: year=%d records=%d", year, table.Nrow())
	}

	if consolidated.Nrow() == 0 {
		return nil, fmt.Errorf("no data was processed successfully from %s", rawDir)
	}

	sort.SliceStable(consolidated.Rows, func(i, j int) bool {
		return consolidated.Rows[i].Compra.Before(consolidated.Rows[j].Compra)
	})

	appLogger.Info(component, "Consolidation completed: records=%d years=%d", consolidated.Nrow(), len(processedYears))
	return consolidated, nil
}

// appendTable concatenates src onto dst. A column group present in any source
// is present in the consolidated table; rows from sources without it carry
// empty values, like a concatenation of mismatched yearly schemas.
func appendTable(dst, src *types.Table) {
	if dst.Nrow() == 0 {
		dst.Cols = src.Cols
	} else {
		dst.Cols.Supplier = dst.Cols.Supplier || src.Cols.Supplier
		dst.Cols.Manufacturer = dst.Cols.Manufacturer || src.Cols.Manufacturer
		dst.Cols.Capacity = dst.Cols.Capacity || src.Cols.Capacity
	}
	dst.Rows = append(dst.Rows, src.Rows...)
}
