package repository

import (
	"vacationtrail/internal/database"
)

type SettingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	query := `SELECT value FROM settings WHERE key = ?`
	err := r.db.QueryRow(query, key).Scan(&value)
	return value, err
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	query := r.db.Dialect.UpsertSettings()
	_, err := r.db.Exec(query, key, value)
	return err
}

// IsRegistrationOpen checks whether new players may still join
func (r *SettingsRepository) IsRegistrationOpen() bool {
	value, err := r.GetSetting("registration_open")
	if err != nil {
		return true // Default to open registration
	}
	return value != "false"
}

// SetRegistrationOpen opens or closes player registration
func (r *SettingsRepository) SetRegistrationOpen(open bool) error {
	value := "false"
	if open {
		value = "true"
	}
	return r.SetSetting("registration_open", value)
}

// GetStartDate returns the configured first day of the game (YYYY-MM-DD),
// or empty when unset
func (r *SettingsRepository) GetStartDate() string {
	value, err := r.GetSetting("start_date")
	if err != nil {
		return ""
	}
	return value
}

// SetStartDate stores the first day of the game
func (r *SettingsRepository) SetStartDate(date string) error {
	return r.SetSetting("start_date", date)
}
