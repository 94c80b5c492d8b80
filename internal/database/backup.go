package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupService makes periodic snapshots of the SQLite file via
// VACUUM INTO and prunes old ones.
type BackupService struct {
	db            *DB
	storagePath   string
	retentionDays int
	interval      time.Duration
	logger        *zerolog.Logger
}

func NewBackupService(db *DB, storagePath string, retentionDays int, interval time.Duration, logger *zerolog.Logger) *BackupService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &BackupService{
		db:            db,
		storagePath:   storagePath,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
	}
}

// Start blocks until ctx is cancelled, making a backup every interval.
func (s *BackupService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Backup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Ошибка создания резервной копии")
			}
			if err := s.Cleanup(); err != nil {
				s.logger.Error().Err(err).Msg("Ошибка очистки старых копий")
			}
		}
	}
}

// Backup writes a consistent snapshot and returns its path.
func (s *BackupService) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.storagePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("bookings-%s.db", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(s.storagePath, name)

	if _, err := s.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to vacuum into backup: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("Резервная копия создана")
	return path, nil
}

// Cleanup removes backups older than the retention window.
func (s *BackupService) Cleanup() error {
	if s.retentionDays <= 0 {
		return nil
	}

	entries, err := os.ReadDir(s.storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		info, err := os.Stat(filepath.Join(s.storagePath, name))
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.storagePath, name)); err != nil {
				s.logger.Warn().Err(err).Str("file", name).Msg("Не удалось удалить старую копию")
			}
		}
	}
	return nil
}
