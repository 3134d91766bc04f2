// Package holdingscsv reads and writes the broker-export CSV layout that
// holdings are uploaded in.
package holdingscsv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
)

// Column headers of the holdings file.
const (
	ColumnAccount  = "계좌"
	ColumnName     = "종목명"
	ColumnCode     = "종목번호"
	ColumnQuantity = "수량"
	ColumnAvgCost  = "평균단가"
	ColumnCurrency = "단위"
)

// RequiredColumns lists the headers every holdings file must carry, in export order.
var RequiredColumns = []string{
	ColumnAccount, ColumnName, ColumnCode, ColumnQuantity, ColumnAvgCost, ColumnCurrency,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMissingColumns is returned when the header lacks one or more required columns.
var ErrMissingColumns = errors.New("missing required columns")

// Parse reads holdings from CSV. The first record is the header; columns are
// matched by name, so order and extra columns do not matter. Stray quotes are
// read literally. Rows with an unknown currency unit, an unusable number or a
// record the reader cannot split are skipped and logged.
func Parse(r io.Reader) ([]domain.RawHolding, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	holdings := make([]domain.RawHolding, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			slog.Warn("skipping unreadable holdings row", "line", parseErr.StartLine, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		cell := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		if isBlank(record) {
			continue
		}

		holding, err := parseRow(cell)
		if err != nil {
			slog.Warn("skipping holdings row", "line", line, "name", cell(ColumnName), "error", err)
			continue
		}
		holdings = append(holdings, holding)
	}

	return holdings, nil
}

func parseRow(cell func(string) string) (domain.RawHolding, error) {
	currency, ok := domain.ParseCurrency(cell(ColumnCurrency))
	if !ok {
		return domain.RawHolding{}, fmt.Errorf("unsupported currency unit %q", cell(ColumnCurrency))
	}

	quantity, err := parseAmount(cell(ColumnQuantity))
	if err != nil {
		return domain.RawHolding{}, fmt.Errorf("invalid %s: %w", ColumnQuantity, err)
	}
	avgCost, err := parseAmount(cell(ColumnAvgCost))
	if err != nil {
		return domain.RawHolding{}, fmt.Errorf("invalid %s: %w", ColumnAvgCost, err)
	}

	return domain.RawHolding{
		Account:  cell(ColumnAccount),
		Name:     cell(ColumnName),
		Code:     cell(ColumnCode),
		Quantity: quantity,
		AvgCost:  avgCost,
		Currency: currency,
	}, nil
}

func parseAmount(s string) (float64, error) {
	d, err := domain.NewDecimalFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative value %s", d)
	}
	return d.Float64(), nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
