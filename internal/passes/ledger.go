package passes

import (
	"context"
	"fmt"
	"time"

	"github.com/ucb-cyarp/dataflowc/pkg/config"
	"github.com/ucb-cyarp/dataflowc/pkg/telemetry"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// PassRun is one recorded pass invocation, persisted to the ledger
// database so a compile run's pass history can be audited after the
// fact (SPEC_FULL.md §3's "pass-run ledger").
type PassRun struct {
	ID            uint `gorm:"primaryKey"`
	RunID         string `gorm:"index"`
	PassName      string
	Rounds        int
	NodesAdded    int
	NodesRemoved  int
	ArcsAdded     int
	ArcsRemoved   int
	DurationMS    int64
	Error         string
	CreatedAt     time.Time
}

// TableName overrides GORM's pluralization default, matching the
// teacher's explicit-table-name style for its GORM models.
func (PassRun) TableName() string { return "pass_runs" }

// Ledger records one PassRun per call to Driver.runPass.
type Ledger struct {
	db *gorm.DB
}

// NewLedger opens (and migrates) the ledger database described by cfg.
func NewLedger(cfg config.DatabaseConfig) (*Ledger, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "sqlite", "":
		path := cfg.Database
		if path == "" {
			path = "dataflowc_ledger.db"
		}
		dialector = sqlite.Open(path)
	case "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
		)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported ledger database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to enable ledger telemetry: %w", err)
		}
	}

	if err := db.AutoMigrate(&PassRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Record inserts one PassRun entry.
func (l *Ledger) Record(ctx context.Context, run *PassRun) error {
	run.CreatedAt = time.Now()
	if err := l.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record pass run: %w", err)
	}
	return nil
}

// RunsForRunID retrieves every recorded PassRun for a compile run, in
// the order they were recorded.
func (l *Ledger) RunsForRunID(ctx context.Context, runID string) ([]PassRun, error) {
	var runs []PassRun
	err := l.db.WithContext(ctx).Where("run_id = ?", runID).Order("id ASC").Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query pass runs: %w", err)
	}
	return runs, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
