package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/charmap"
)

type readAttempt struct {
	delimiter rune
	encoding  string // "utf-8" or "latin-1"
}

// legacy extracts are ;-separated, encoding varies by publication year
var legacyAttempts = []readAttempt{
	{';', "utf-8"},
	{';', "latin-1"},
}

// modern extracts vary in both separator and encoding
var modernAttempts = []readAttempt{
	{',', "utf-8"},
	{';', "utf-8"},
	{'\t', "utf-8"},
	{'\t', "latin-1"},
}

// openFlexible opens the CSV trying each (delimiter, encoding) combination in
// order until one yields a non-empty dataframe. Type detection is disabled so
// CNPJs and regional-formatted numbers survive as raw strings for the
// converters to parse.
func openFlexible(path string, attempts []readAttempt) (dataframe.DataFrame, error) {
	var lastErr error

	for _, attempt := range attempts {
		file, err := os.Open(path)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("failed to open file %s: %v", path, err)
		}

		var reader io.Reader = file
		if attempt.encoding == "latin-1" {
			reader = charmap.ISO8859_1.NewDecoder().Reader(file)
		}

		df := dataframe.ReadCSV(reader,
			dataframe.WithDelimiter(attempt.delimiter),
			dataframe.WithLazyQuotes(true),
			dataframe.DetectTypes(false),
		)
		file.Close()

		if df.Error() != nil {
			lastErr = df.Error()
			continue
		}
		if df.Nrow() == 0 || df.Ncol() < 2 {
			lastErr = fmt.Errorf("dataframe is empty or single-column (delimiter %q)", attempt.delimiter)
			continue
		}
		return df, nil
	}

	return dataframe.DataFrame{}, fmt.Errorf("all read attempts failed for %s: %v", path, lastErr)
}
