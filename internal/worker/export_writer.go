package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"zapys/internal/models"
)

// ExcelWriter renders bookings into an xlsx file under dir.
type ExcelWriter struct {
	dir string
}

func NewExcelWriter(dir string) *ExcelWriter {
	return &ExcelWriter{dir: dir}
}

func (w *ExcelWriter) Write(bookings []*models.Booking) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Записи"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Користувач", "Дата", "Час", "Створено"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	for row, booking := range bookings {
		values := []interface{}{
			booking.ID,
			booking.Owner,
			booking.Date,
			booking.Time,
			booking.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("write row %d: %w", row+2, err)
			}
		}
	}

	path := filepath.Join(w.dir, fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102-150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save export: %w", err)
	}
	return path, nil
}
