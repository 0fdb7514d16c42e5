package dbexec

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardExecutor_NilDB(t *testing.T) {
	exec := NewStandardExecutor(nil)
	_, err := exec.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	_, err = exec.ExecContext(context.Background(), "DELETE FROM people")
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestTimeoutExecutor_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	exec := WithTimeout(NewStandardExecutor(db), time.Second)
	rows, err := exec.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)

	require.True(t, rows.Next())
	var one int
	require.NoError(t, rows.Scan(&one))
	assert.Equal(t, 1, one)
	require.NoError(t, rows.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeoutExecutor_DeadlineExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT SLEEP").WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(1))

	exec := WithTimeout(NewStandardExecutor(db), 20*time.Millisecond)
	_, err = exec.QueryContext(context.Background(), "SELECT SLEEP(1)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || err.Error() == "canceling query due to user request")
}

func TestWithTimeout_Disabled(t *testing.T) {
	base := NewStandardExecutor(nil)
	assert.Same(t, base, WithTimeout(base, 0))
}
