package models

import "time"

// ExportJob describes one export request processed by the worker.
type ExportJob struct {
	ID          string    `json:"id"`
	RequestedBy int64     `json:"requested_by"`
	ChatID      int64     `json:"chat_id"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
}
