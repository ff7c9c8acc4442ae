package dto

import (
	"strings"
	"time"

	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/report"
	"github.com/google/uuid"
)

// DateLayout is the wire format of report window bounds
const DateLayout = "2006-01-02"

// MarginPercentPlaces is the precision margin percentages are returned with
const MarginPercentPlaces int32 = 2

// NewProfitMarginResponse rounds margin percentages for the wire
func NewProfitMarginResponse(r *report.ProfitMarginReport) report.ProfitMarginReport {
	return r.Rounded(MarginPercentPlaces)
}

// PeriodQuery is an inclusive whole-day window
type PeriodQuery struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

// Bounds parses the window. Binding has already checked the layout.
func (q PeriodQuery) Bounds() (time.Time, time.Time, error) {
	from, err := time.Parse(DateLayout, q.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(DateLayout, q.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// TopSellersQuery selects the ranking window and size
type TopSellersQuery struct {
	PeriodQuery
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// StockValuationQuery optionally narrows valuation to one location
type StockValuationQuery struct {
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
}

// Location returns the parsed location filter, nil for all locations.
func (q StockValuationQuery) Location() *uuid.UUID {
	if q.LocationID == "" {
		return nil
	}
	id, err := uuid.Parse(q.LocationID)
	if err != nil {
		return nil
	}
	return &id
}

// LedgerExportQuery selects the lines to flatten. Types is a comma separated
// list of sell, purchase, stock_adjustment.
type LedgerExportQuery struct {
	PeriodQuery
	Types  string `form:"types"`
	Format string `form:"format" binding:"omitempty,oneof=csv json"`
}

// TransactionTypes splits the types filter. Unknown names are passed through
// for the service to reject.
func (q LedgerExportQuery) TransactionTypes() []ledger.TransactionType {
	if strings.TrimSpace(q.Types) == "" {
		return nil
	}
	parts := strings.Split(q.Types, ",")
	out := make([]ledger.TransactionType, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, ledger.TransactionType(strings.ToLower(p)))
		}
	}
	return out
}

// ArchivedExportResponse points at an uploaded CSV export
type ArchivedExportResponse struct {
	ObjectKey   string    `json:"object_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int       `json:"rows"`
}
