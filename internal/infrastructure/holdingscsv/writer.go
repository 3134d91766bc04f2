package holdingscsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
)

// Write serializes holdings in the layout Parse accepts. Output starts with a
// UTF-8 BOM so spreadsheet tools detect the encoding; text fields are always
// quoted.
func Write(w io.Writer, holdings []domain.RawHolding) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	if _, err := bw.WriteString(strings.Join(RequiredColumns, ",")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, h := range holdings {
		quantity, err := formatAmount(h.Quantity)
		if err != nil {
			return fmt.Errorf("holding %s: %w", h.Code, err)
		}
		avgCost, err := formatAmount(h.AvgCost)
		if err != nil {
			return fmt.Errorf("holding %s: %w", h.Code, err)
		}

		row := strings.Join([]string{
			quote(h.Account),
			quote(h.Name),
			quote(h.Code),
			quantity,
			avgCost,
			string(h.Currency),
		}, ",")
		if _, err := bw.WriteString("\n" + row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatAmount(f float64) (string, error) {
	d, err := domain.NewDecimalFromFloat(f)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}
