package handler

import (
	"context"
	"time"

	inventoryapp "github.com/boutique/backoffice/internal/application/inventory"
	reportapp "github.com/boutique/backoffice/internal/application/report"
	"github.com/boutique/backoffice/internal/domain/report"
	"github.com/boutique/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var testTenantID = uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestEngine mounts handlers behind the same request id and tenant
// middleware the server uses.
func newTestEngine(register func(r *gin.RouterGroup)) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Tenant(middleware.DefaultTenantConfig()))
	register(engine.Group("/api/v1"))
	return engine
}

type MockAdjustmentService struct {
	mock.Mock
}

func (m *MockAdjustmentService) ApplyAdjustmentBatch(ctx context.Context, tenantID uuid.UUID, req inventoryapp.AdjustmentBatchRequest) (*inventoryapp.AdjustmentResult, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.AdjustmentResult), args.Error(1)
}

func (m *MockAdjustmentService) GetQuantity(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (*inventoryapp.StockQuantityResponse, error) {
	args := m.Called(ctx, tenantID, variationID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.StockQuantityResponse), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ComputeProfitMarginReport(ctx context.Context, tenantID uuid.UUID, dateFrom, dateTo time.Time) (*report.ProfitMarginReport, error) {
	args := m.Called(ctx, tenantID, dateFrom, dateTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.ProfitMarginReport), args.Error(1)
}

func (m *MockReportService) ComputeStockValuationReport(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) (*report.StockValuationReport, error) {
	args := m.Called(ctx, tenantID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.StockValuationReport), args.Error(1)
}

func (m *MockReportService) ComputeTopSellingProducts(ctx context.Context, tenantID uuid.UUID, dateFrom, dateTo time.Time, limit int) (*report.TopSellersReport, error) {
	args := m.Called(ctx, tenantID, dateFrom, dateTo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.TopSellersReport), args.Error(1)
}

func (m *MockReportService) ExportLedger(ctx context.Context, tenantID uuid.UUID, filter reportapp.ExportFilter) (*report.LedgerExport, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.LedgerExport), args.Error(1)
}

func (m *MockReportService) ArchiveLedgerExport(ctx context.Context, tenantID uuid.UUID, filter reportapp.ExportFilter) (*reportapp.ArchivedExport, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ArchivedExport), args.Error(1)
}
