package store

import (
	"database/sql"
	"time"

	"github.com/skycast/skycast/internal/models"
)

// prefLastCity is the single preference the UI round-trips: the last
// successfully searched city, restored on startup.
const prefLastCity = "last_city"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO prefs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	return err
}

// GetPref returns the stored value and whether the key exists.
func (s *Store) GetPref(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SaveLastCity(city string) error {
	return s.SetPref(prefLastCity, city)
}

// LastCity returns the last searched city, or "" when none is saved.
func (s *Store) LastCity() (string, error) {
	city, _, err := s.GetPref(prefLastCity)
	return city, err
}

func (s *Store) InsertSearch(rec models.SearchRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO searches (city, country, latitude, longitude, temperature, weather_code, searched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.City, rec.Country, rec.Latitude, rec.Longitude, rec.Temperature, rec.WeatherCode, rec.SearchedAt)
	return err
}

func (s *Store) RecentSearches(limit int) ([]models.SearchRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, city, country, latitude, longitude, temperature, weather_code, searched_at
		FROM searches
		ORDER BY searched_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SearchRecord
	for rows.Next() {
		var rec models.SearchRecord
		if err := rows.Scan(&rec.ID, &rec.City, &rec.Country, &rec.Latitude, &rec.Longitude, &rec.Temperature, &rec.WeatherCode, &rec.SearchedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestSearch returns the most recent search record, or nil when the log
// is empty.
func (s *Store) LatestSearch() (*models.SearchRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, city, country, latitude, longitude, temperature, weather_code, searched_at
		FROM searches
		ORDER BY searched_at DESC, id DESC
		LIMIT 1
	`)

	var rec models.SearchRecord
	err := row.Scan(&rec.ID, &rec.City, &rec.Country, &rec.Latitude, &rec.Longitude, &rec.Temperature, &rec.WeatherCode, &rec.SearchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
