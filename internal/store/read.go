package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/histomap/histomap/internal/histdata"
)

// Load reconstructs the full snapshot for a year.
// An unknown year yields an empty record, not an error.
//
// Countries and cities come back in relationship insertion order
// (ORDER BY rowid) so repeated loads of an unchanged year are
// deterministic.
func (s *Store) Load(ctx context.Context, year int) (*histdata.Data, error) {
	data := &histdata.Data{Year: year}

	yearID, ok, err := s.yearID(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load year %d: %w", year, err)
	}
	if !ok {
		return data, nil
	}

	if data.Countries, err = s.loadCountries(ctx, yearID); err != nil {
		return nil, fmt.Errorf("load year %d: %w", year, err)
	}
	if data.Cities, err = s.loadCities(ctx, yearID); err != nil {
		return nil, fmt.Errorf("load year %d: %w", year, err)
	}
	if data.Note, err = s.loadNote(ctx, yearID); err != nil {
		return nil, fmt.Errorf("load year %d: %w", year, err)
	}

	return data, nil
}

// LoadCountryList returns the country names present in a year.
func (s *Store) LoadCountryList(ctx context.Context, year int) ([]string, error) {
	yearID, ok, err := s.yearID(ctx, year)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name
		FROM yearCountries yc
		JOIN countries c ON c.id = yc.countryId
		WHERE yc.yearId = ?
		ORDER BY yc.id ASC
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("load country list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("load country list: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadCityList returns the city names present in a year.
func (s *Store) LoadCityList(ctx context.Context, year int) ([]string, error) {
	yearID, ok, err := s.yearID(ctx, year)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name
		FROM yearCities yc
		JOIN cities c ON c.id = yc.cityId
		WHERE yc.yearId = ?
		ORDER BY yc.rowid ASC
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("load city list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("load city list: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadCountry returns one country of one year, or nil when either the
// year or the relationship does not exist.
func (s *Store) LoadCountry(ctx context.Context, year int, name string) (*histdata.Country, error) {
	yearID, ok, err := s.yearID(ctx, year)
	if err != nil || !ok {
		return nil, err
	}

	var blob []byte
	err = s.db.QueryRowContext(ctx, `
		SELECT b.contour
		FROM yearCountries yc
		JOIN countries c ON c.id = yc.countryId
		JOIN borders b ON b.id = yc.borderId
		WHERE yc.yearId = ? AND c.name = ?
	`, yearID, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load country %q: %w", name, err)
	}

	contour, err := histdata.DecodeContour(blob)
	if err != nil {
		return nil, fmt.Errorf("load country %q: %w", name, err)
	}
	return &histdata.Country{Name: name, Contour: contour}, nil
}

// LoadCity returns one city of one year, or nil when the city is not
// associated with the year.
func (s *Store) LoadCity(ctx context.Context, year int, name string) (*histdata.City, error) {
	yearID, ok, err := s.yearID(ctx, year)
	if err != nil || !ok {
		return nil, err
	}

	var lat, lon float64
	err = s.db.QueryRowContext(ctx, `
		SELECT c.latitude, c.longitude
		FROM yearCities yc
		JOIN cities c ON c.id = yc.cityId
		WHERE yc.yearId = ? AND c.name = ?
	`, yearID, name).Scan(&lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load city %q: %w", name, err)
	}

	return &histdata.City{
		Name:       name,
		Coordinate: histdata.Coordinate{Latitude: float32(lat), Longitude: float32(lon)},
	}, nil
}

// LoadNote returns a year's note, or nil when the year has none.
func (s *Store) LoadNote(ctx context.Context, year int) (*histdata.Note, error) {
	yearID, ok, err := s.yearID(ctx, year)
	if err != nil || !ok {
		return nil, err
	}
	return s.loadNote(ctx, yearID)
}

func (s *Store) loadCountries(ctx context.Context, yearID int64) ([]histdata.Country, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, b.contour
		FROM yearCountries yc
		JOIN countries c ON c.id = yc.countryId
		JOIN borders b ON b.id = yc.borderId
		WHERE yc.yearId = ?
		ORDER BY yc.id ASC
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}
	defer rows.Close()

	var countries []histdata.Country
	for rows.Next() {
		var name string
		var blob []byte
		if err := rows.Scan(&name, &blob); err != nil {
			return nil, fmt.Errorf("load countries: %w", err)
		}
		contour, err := histdata.DecodeContour(blob)
		if err != nil {
			return nil, fmt.Errorf("load countries: country %q: %w", name, err)
		}
		countries = append(countries, histdata.Country{Name: name, Contour: contour})
	}
	return countries, rows.Err()
}

func (s *Store) loadCities(ctx context.Context, yearID int64) ([]histdata.City, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.latitude, c.longitude
		FROM yearCities yc
		JOIN cities c ON c.id = yc.cityId
		WHERE yc.yearId = ?
		ORDER BY yc.rowid ASC
	`, yearID)
	if err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}
	defer rows.Close()

	var cities []histdata.City
	for rows.Next() {
		var name string
		var lat, lon float64
		if err := rows.Scan(&name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("load cities: %w", err)
		}
		cities = append(cities, histdata.City{
			Name:       name,
			Coordinate: histdata.Coordinate{Latitude: float32(lat), Longitude: float32(lon)},
		})
	}
	return cities, rows.Err()
}

func (s *Store) loadNote(ctx context.Context, yearID int64) (*histdata.Note, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `
		SELECT n.text
		FROM yearNotes yn
		JOIN notes n ON n.id = yn.noteId
		WHERE yn.yearId = ?
	`, yearID).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	return &histdata.Note{Text: text}, nil
}

// yearID resolves a year value to its row id.
func (s *Store) yearID(ctx context.Context, year int) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM years WHERE year = ?`, year).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve year %d: %w", year, err)
	}
	return id, true, nil
}
