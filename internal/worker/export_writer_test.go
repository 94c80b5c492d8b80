package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"zapys/internal/models"
)

func TestExcelWriterWrite(t *testing.T) {
	writer := NewExcelWriter(t.TempDir())

	bookings := []*models.Booking{
		{ID: 1, Owner: "alice", Date: "2024-01-05", Time: "10:00", CreatedAt: time.Now()},
		{ID: 2, Owner: "bob", Date: "2024-01-06", Time: "11:30", CreatedAt: time.Now()},
	}

	path, err := writer.Write(bookings)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Записи")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "alice", rows[1][1])
	assert.Equal(t, "2024-01-06", rows[2][2])
	assert.Equal(t, "11:30", rows[2][3])
}

func TestExcelWriterEmpty(t *testing.T) {
	writer := NewExcelWriter(t.TempDir())

	path, err := writer.Write(nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Записи")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
