package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type shelf struct {
	ID   uint
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&shelf{}))
	return db
}

func TestDBMetricsPlugin_RecordsStatements(t *testing.T) {
	provider, reader := newTestMeter(t)
	metrics, err := NewDBMetrics(provider.Meter("db"), DBMetricsConfig{SlowQueryThreshold: time.Hour}, nil)
	require.NoError(t, err)

	db := openSQLite(t)
	require.NoError(t, db.Use(NewDBMetricsPlugin(metrics)))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&shelf{Name: "A"}).Error)
	var found shelf
	require.NoError(t, db.WithContext(ctx).First(&found).Error)
	err = db.WithContext(ctx).Where("name = ?", "missing").First(&found).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, db.WithContext(ctx).Exec("UPDATE shelves SET name = ?", "B").Error)

	data := collect(t, reader)
	assert.Equal(t, int64(1), counterValue(t, data, "db_query_total", AttrDBOperation.String("INSERT")))
	assert.Equal(t, int64(2), counterValue(t, data, "db_query_total",
		AttrDBOperation.String("SELECT"), AttrResult.String("ok")))
	assert.Equal(t, int64(1), counterValue(t, data, "db_query_total", AttrDBOperation.String("UPDATE")))
	assert.Equal(t, int64(0), counterValue(t, data, "db_query_total", AttrResult.String("error")))
}

func TestDBMetrics_SlowQueries(t *testing.T) {
	provider, reader := newTestMeter(t)
	metrics, err := NewDBMetrics(provider.Meter("db"), DBMetricsConfig{SlowQueryThreshold: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordQuery(ctx, "select", "stock_records", 80*time.Millisecond, nil)
	metrics.RecordQuery(ctx, "select", "stock_records", 10*time.Millisecond, nil)
	metrics.RecordQuery(ctx, "", "", 90*time.Millisecond, errors.New("deadlock"))

	data := collect(t, reader)
	assert.Equal(t, int64(1), counterValue(t, data, "db_slow_query_total", AttrDBTable.String("stock_records")))
	assert.Equal(t, int64(1), counterValue(t, data, "db_slow_query_total", AttrDBTable.String("unknown")))
	assert.Equal(t, int64(1), counterValue(t, data, "db_query_total",
		AttrDBOperation.String("OTHER"), AttrResult.String("error")))
}

func TestDBMetrics_PoolStats(t *testing.T) {
	provider, reader := newTestMeter(t)
	metrics, err := NewDBMetrics(provider.Meter("db"), DBMetricsConfig{PoolStatsInterval: time.Hour}, nil)
	require.NoError(t, err)

	sqlDB, err := openSQLite(t).DB()
	require.NoError(t, err)

	metrics.StartPoolStatsCollection(context.Background(), sqlDB)
	defer metrics.Stop()

	require.Eventually(t, func() bool {
		g, ok := collect(t, reader)["db_pool_connections_max"].(metricdata.Gauge[int64])
		return ok && len(g.DataPoints) == 1 && g.DataPoints[0].Value == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"SELECT * FROM ledger_lines":     "SELECT",
		"  insert into stock_records":    "INSERT",
		"update stock_records set x = 1": "UPDATE",
		"DELETE FROM shelves":            "DELETE",
		"WITH t AS (SELECT 1) SELECT *":  "OTHER",
		"":                               "OTHER",
	}
	for statement, want := range tests {
		assert.Equal(t, want, detectOperationType(statement), statement)
	}
}
