// Package settings stores user settings in the database, encrypting API
// keys, and pushes changes to the components that use them.
package settings

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/butinmaker/butinmaker/internal/crypto"
)

// Applier receives the effective settings after every load or update.
type Applier func(Settings)

// Service reads and writes settings.
type Service struct {
	db       *sql.DB
	secrets  *crypto.SecretStore
	defaults Settings
	logger   zerolog.Logger

	mu       sync.RWMutex
	current  Settings
	appliers []Applier
}

// NewService creates a settings service. Nothing is read until Load.
func NewService(db *sql.DB, secrets *crypto.SecretStore, defaults Settings, logger zerolog.Logger) *Service {
	return &Service{
		db:       db,
		secrets:  secrets,
		defaults: defaults,
		current:  defaults,
		logger:   logger.With().Str("component", "settings").Logger(),
	}
}

// OpenSecretStore builds the store used to encrypt API keys, creating the
// key-derivation salt on first use.
func OpenSecretStore(ctx context.Context, db *sql.DB, secret string) (*crypto.SecretStore, error) {
	var encoded string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, keySalt).Scan(&encoded)
	switch {
	case err == nil:
		salt, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid stored salt: %w", err)
		}
		return crypto.NewSecretStore(secret, salt), nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := setRow(ctx, db, keySalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return crypto.NewSecretStore(secret, salt), nil
}

// OnChange registers fn and calls it with the current settings.
func (s *Service) OnChange(fn Applier) {
	s.mu.Lock()
	s.appliers = append(s.appliers, fn)
	current := s.current
	s.mu.Unlock()
	fn(current)
}

// Load reads stored settings over the defaults and notifies appliers.
func (s *Service) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	defer rows.Close()

	next := s.defaults
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan setting: %w", err)
		}
		field := next.field(key)
		if field == nil {
			continue
		}
		if secretKeys[key] {
			plain, err := s.secrets.Decrypt(value)
			if err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Cannot decrypt stored secret, using default")
				continue
			}
			value = plain
		}
		*field = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	s.apply(next)
	return nil
}

func (s *Service) apply(next Settings) {
	s.mu.Lock()
	s.current = next
	appliers := append([]Applier(nil), s.appliers...)
	s.mu.Unlock()

	for _, fn := range appliers {
		fn(next)
	}
}

// Current returns the effective settings.
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HardlinkDir returns the directory hardlinks are created in.
func (s *Service) HardlinkDir() string {
	return s.Current().HardlinkDir
}

// OutputDir returns the directory generated files are written to.
func (s *Service) OutputDir() string {
	return s.Current().OutputDir
}

// Update stores the changed fields and returns the new effective
// settings. A masked secret sent back unchanged is ignored.
func (s *Service) Update(ctx context.Context, u Update) (Settings, error) {
	for key, v := range u.values() {
		if v == nil {
			continue
		}
		value := strings.TrimSpace(*v)
		if secretKeys[key] && isMasked(value) {
			continue
		}

		if value == "" {
			if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
				return Settings{}, fmt.Errorf("failed to clear %s: %w", key, err)
			}
			continue
		}

		if secretKeys[key] {
			sealed, err := s.secrets.Encrypt(value)
			if err != nil {
				return Settings{}, fmt.Errorf("failed to encrypt %s: %w", key, err)
			}
			value = sealed
		}
		if err := setRow(ctx, s.db, key, value); err != nil {
			return Settings{}, err
		}
		s.logger.Info().Str("key", key).Msg("Setting updated")
	}

	if err := s.Load(ctx); err != nil {
		return Settings{}, err
	}
	return s.Current(), nil
}

func setRow(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
