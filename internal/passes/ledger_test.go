package passes

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockLedger wires a Ledger directly onto a sqlmock connection,
// bypassing NewLedger's dialector switch, the way the teacher's
// postgres_test.go wires a repository directly onto sqlmock.New()
// rather than going through its own factory.
func newMockLedger(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return &Ledger{db: gdb}, mock
}

func TestLedger_Record(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "pass_runs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	run := &PassRun{
		RunID:      "run-1",
		PassName:   "DelayAbsorption",
		Rounds:     2,
		NodesAdded: 0,
		ArcsAdded:  0,
		DurationMS: 12,
	}
	err := ledger.Record(context.Background(), run)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedger_Record_DatabaseError(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "pass_runs"`)).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := ledger.Record(context.Background(), &PassRun{RunID: "run-2", PassName: "FIFOMerge"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record pass run")
}

func TestLedger_RunsForRunID(t *testing.T) {
	ledger, mock := newMockLedger(t)

	rows := sqlmock.NewRows([]string{"id", "run_id", "pass_name", "rounds", "nodes_added", "nodes_removed", "arcs_added", "arcs_removed", "duration_ms", "error", "created_at"}).
		AddRow(1, "run-3", "Expansion", 1, 4, 0, 3, 0, 5, "", nil).
		AddRow(2, "run-3", "PartitionInsertion", 1, 2, 0, 4, 2, 3, "", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "pass_runs" WHERE run_id = $1`)).
		WithArgs("run-3").
		WillReturnRows(rows)

	runs, err := ledger.RunsForRunID(context.Background(), "run-3")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "Expansion", runs[0].PassName)
	assert.Equal(t, "PartitionInsertion", runs[1].PassName)
}
