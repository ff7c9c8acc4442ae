package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ExportRow is one flat ledger row: date, type, amount, description, reference.
// Encoding (CSV or otherwise) is left to the caller.
type ExportRow struct {
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

// ExportColumns is the header of the flat export
var ExportColumns = []string{"date", "type", "amount", "description", "reference"}

// LedgerExport is the flat export for a window
type LedgerExport struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Period      DateRange   `json:"period"`
	Rows        []ExportRow `json:"rows"`
}

// NewExportRow flattens a ledger line. Sell and purchase lines export their
// line total; adjustment lines export the applied signed base delta valued at
// unitCost.
func NewExportRow(l ledger.LedgerLine, unitCost decimal.Decimal) ExportRow {
	row := ExportRow{
		Date:      l.TransactionDate,
		Type:      l.TransactionType.String(),
		Reference: l.Reference,
	}

	name := strings.TrimSpace(l.Product.Name)
	if v := strings.TrimSpace(l.Variation.Name); v != "" && v != "Default" {
		name = fmt.Sprintf("%s (%s)", name, v)
	}

	if l.Line.IsAdjustment() {
		row.Amount = l.Line.BaseQuantityDelta.Mul(unitCost)
		row.Description = fmt.Sprintf("%s %s %s @ %s: %s",
			l.Line.Direction, l.Line.Quantity.String(), name, l.Location.Name, l.Line.Reason)
		if l.Line.Overdraft.IsPositive() {
			row.Description += fmt.Sprintf(" (overdraft %s discarded)", l.Line.Overdraft.String())
		}
		return row
	}

	row.Amount = l.Line.SalesAmount()
	row.Description = fmt.Sprintf("%s x %s @ %s", l.Line.Quantity.String(), name, l.Line.UnitPrice.String())
	return row
}

// Record renders the row as string fields in ExportColumns order
func (r ExportRow) Record() []string {
	return []string{
		r.Date.Format("2006-01-02"),
		r.Type,
		r.Amount.StringFixed(2),
		r.Description,
		r.Reference,
	}
}

// SortExportRows orders rows by date, oldest first. Rows on the same instant
// keep their scan order.
func SortExportRows(rows []ExportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
}
