package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonDigits = regexp.MustCompile(`\D`)

// ParseDate parses the date formats seen across the yearly extracts. Returns
// the zero time when nothing matches (row-level soft failure).
func ParseDate(dateStr string) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02",
		"02/01/2006",
		"02/01/06",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseFloat parses Brazilian-formatted monetary values: strips R$, signs of
// grouping, parentheses and spaces, then swaps the decimal comma.
func ParseFloat(valStr string) float64 {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return 0.0
	}
	cleanStr := strings.NewReplacer("R$", "", "(", "", ")", "", "+", "", " ", "").Replace(valStr)
	if strings.Contains(cleanStr, ",") {
		// Regional format: dot is the thousands separator.
		cleanStr = strings.ReplaceAll(cleanStr, ".", "")
		cleanStr = strings.ReplaceAll(cleanStr, ",", ".")
	}
	val, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		return 0.0
	}
	return val
}

// CleanCNPJ strips non-digits and left-pads to the canonical 14 digits.
// Values arriving in scientific notation (spreadsheet damage) are expanded
// first.
func CleanCNPJ(valStr string) string {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return ""
	}
	if strings.Contains(valStr, "E+") || strings.Contains(valStr, "e+") {
		num, err := strconv.ParseFloat(strings.ReplaceAll(valStr, ",", "."), 64)
		if err == nil {
			valStr = strconv.FormatFloat(num, 'f', 0, 64)
		}
	}
	digits := nonDigits.ReplaceAllString(valStr, "")
	if digits == "" {
		return ""
	}
	for len(digits) < 14 {
		digits = "0" + digits
	}
	return digits
}

// CNPJRoot returns the first 8 digits of a CNPJ, the part shared by all
// branches of the same legal entity.
func CNPJRoot(cnpj string) string {
	digits := nonDigits.ReplaceAllString(cnpj, "")
	if len(digits) > 8 {
		return digits[:8]
	}
	return digits
}

// CleanCodigoBR strips the legacy "BR" prefix (and its leading zeros) from a
// catalog code, leaving the bare numeric code used since 2023.
func CleanCodigoBR(codigo string) string {
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	if strings.HasPrefix(codigo, "BR") {
		codigo = strings.TrimLeft(strings.TrimPrefix(codigo, "BR"), "0")
	}
	return strings.TrimSpace(codigo)
}

// NormalizeGenerico maps the generic-medicine flag variants to SIM/NAO form.
func NormalizeGenerico(val string) string {
	switch strings.ToUpper(strings.TrimSpace(val)) {
	case "S", "SIM":
		return "SIM"
	case "NÃO", "NAO", "N", "":
		return "NÃO"
	default:
		return "NÃO"
	}
}

// NormalizeTipoCompra maps purchase-type variants to the canonical uppercase
// labels; anything unrecognized becomes INDEFINIDO.
func NormalizeTipoCompra(val string) string {
	switch strings.ToUpper(strings.TrimSpace(val)) {
	case "A", "ADMINISTRATIVA":
		return "ADMINISTRATIVA"
	case "J", "JUDICIAL":
		return "JUDICIAL"
	default:
		return "INDEFINIDO"
	}
}

// CleanText trims and removes the textual null sentinels the source files mix
// into string columns.
func CleanText(val string) string {
	val = strings.TrimSpace(val)
	if val == "nan" || val == "None" || val == "NaN" {
		return ""
	}
	return val
}
