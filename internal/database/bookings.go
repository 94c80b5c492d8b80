package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zapys/internal/models"
)

// CreateBookingWithLock reserves the (date, time) slot and inserts the
// booking inside one transaction. Exactly one of several concurrent
// callers for the same slot succeeds, the rest get ErrSlotTaken.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE date = ? AND time = ?",
		booking.Date, booking.Time,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check slot availability: %w", err)
	}
	if count > 0 {
		return ErrSlotTaken
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO bookings (owner, date, time, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		booking.Owner, booking.Date, booking.Time, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get booking id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	db.logger.Info().
		Int64("booking_id", id).
		Str("owner", booking.Owner).
		Str("date", booking.Date).
		Str("time", booking.Time).
		Msg("Запись создана")

	return nil
}

// UpdateBookingWithLock moves an existing booking to a new slot. The
// occupancy check excludes the booking itself, so re-confirming the
// same slot always succeeds.
func (db *DB) UpdateBookingWithLock(ctx context.Context, id int64, date, timeStr string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE date = ? AND time = ? AND id != ?",
		date, timeStr, id,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check slot availability: %w", err)
	}
	if count > 0 {
		return ErrSlotTaken
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE bookings SET date = ?, time = ?, updated_at = ? WHERE id = ?",
		date, timeStr, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.logger.Info().
		Int64("booking_id", id).
		Str("date", date).
		Str("time", timeStr).
		Msg("Запись перенесена")

	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	db.logger.Info().Int64("booking_id", id).Msg("Запись удалена")
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := db.QueryRowContext(ctx,
		"SELECT id, owner, date, time, created_at, updated_at FROM bookings WHERE id = ?",
		id,
	).Scan(&booking.ID, &booking.Owner, &booking.Date, &booking.Time, &booking.CreatedAt, &booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetUserBookings returns the owner's bookings in creation order.
func (db *DB) GetUserBookings(ctx context.Context, owner string) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, owner, date, time, created_at, updated_at FROM bookings WHERE owner = ? ORDER BY id",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(&booking.ID, &booking.Owner, &booking.Date, &booking.Time, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	return bookings, rows.Err()
}

// GetAllBookings returns every booking ordered by slot, for exports.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, owner, date, time, created_at, updated_at FROM bookings ORDER BY date, time",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(&booking.ID, &booking.Owner, &booking.Date, &booking.Time, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	return bookings, rows.Err()
}

func (db *DB) IsSlotTaken(ctx context.Context, date, timeStr string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE date = ? AND time = ?",
		date, timeStr,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count > 0, nil
}

func (db *DB) CountBookings(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
