// Package prefs persists dashboard preferences in a sqlite key/value table.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const (
	KeyTheme            = "theme"
	KeyItemsPerPage     = "items_per_page"
	KeySidebarCollapsed = "sidebar_collapsed"

	MaxItemsPerPage = 500
)

var (
	ErrUnknownKey   = errors.New("unknown preference")
	ErrInvalidValue = errors.New("invalid preference value")
)

type Preferences struct {
	Theme            string `json:"theme"`
	ItemsPerPage     int    `json:"items_per_page"`
	SidebarCollapsed bool   `json:"sidebar_collapsed"`
}

func Defaults() Preferences {
	return Preferences{Theme: "light", ItemsPerPage: 20}
}

type PreferenceModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (PreferenceModel) TableName() string { return "preferences" }

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the sqlite file at path and migrates the
// preferences table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	if err := db.AutoMigrate(&PreferenceModel{}); err != nil {
		return nil, fmt.Errorf("migrate prefs: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns stored preferences layered over Defaults.
func (s *Store) Get(ctx context.Context) (Preferences, error) {
	rows := make([]PreferenceModel, 0)
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return Preferences{}, err
	}
	p := Defaults()
	for _, m := range rows {
		// rows are validated on write; a bad one falls back to the default
		_ = apply(&p, m.Key, m.Value)
	}
	return p, nil
}

// Set validates and upserts a single preference.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, map[string]string{key: value})
}

// Update validates every pair before writing any of them.
func (s *Store) Update(ctx context.Context, values map[string]string) error {
	var scratch Preferences
	models := make([]PreferenceModel, 0, len(values))
	for k, v := range values {
		if err := apply(&scratch, k, v); err != nil {
			return err
		}
		models = append(models, PreferenceModel{Key: k, Value: canonical(scratch, k)})
	}
	if len(models) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models).Error
}

func apply(p *Preferences, key, value string) error {
	switch key {
	case KeyTheme:
		if value != "light" && value != "dark" {
			return fmt.Errorf("%w: theme %q", ErrInvalidValue, value)
		}
		p.Theme = value
	case KeyItemsPerPage:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxItemsPerPage {
			return fmt.Errorf("%w: items_per_page %q", ErrInvalidValue, value)
		}
		p.ItemsPerPage = n
	case KeySidebarCollapsed:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: sidebar_collapsed %q", ErrInvalidValue, value)
		}
		p.SidebarCollapsed = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func canonical(p Preferences, key string) string {
	switch key {
	case KeyItemsPerPage:
		return strconv.Itoa(p.ItemsPerPage)
	case KeySidebarCollapsed:
		return strconv.FormatBool(p.SidebarCollapsed)
	}
	return p.Theme
}
