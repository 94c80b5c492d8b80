package database

import "errors"

var (
	// ErrSlotTaken слот (дата, время) уже занят другой записью
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrNotFound запись с таким ID не существует
	ErrNotFound = errors.New("booking not found")
)
