package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/histomap/histomap/internal/histdata"
)

// Upsert merges a full year snapshot into storage. Idempotent: applying
// the same snapshot twice leaves the database unchanged and creates no
// duplicate border or note rows.
//
// Border handling is driven by content comparison, not mere presence:
//   - new relationship: reuse a borders row with a matching hash or
//     insert one, then insert the join row
//   - unchanged contour: no writes at all
//   - changed contour, exclusively owned border: delete the old row
//     (the cascade removes the join) and re-insert against the
//     find-or-created replacement
//   - changed contour, shared border: leave the shared row alone and
//     repoint only this relationship (fork-on-write)
//
// City coordinates are overwritten globally by name; see the package
// comment for why this is deliberately not forked.
func (s *Store) Upsert(ctx context.Context, data *histdata.Data) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert year %d: begin tx: %w", data.Year, err)
	}
	defer tx.Rollback() // No-op if committed

	yearID, err := findOrCreateYear(ctx, tx, data.Year)
	if err != nil {
		return fmt.Errorf("upsert year %d: %w", data.Year, err)
	}

	for _, country := range data.Countries {
		if err := upsertCountry(ctx, tx, yearID, country); err != nil {
			return fmt.Errorf("upsert year %d: country %q: %w", data.Year, country.Name, err)
		}
	}

	for _, city := range data.Cities {
		if err := upsertCity(ctx, tx, yearID, city); err != nil {
			return fmt.Errorf("upsert year %d: city %q: %w", data.Year, city.Name, err)
		}
	}

	if data.Note != nil {
		if err := upsertNote(ctx, tx, yearID, data.Note.Text); err != nil {
			return fmt.Errorf("upsert year %d: note: %w", data.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert year %d: commit: %w", data.Year, err)
	}
	return nil
}

// Remove deletes exactly the entities named in data from the year's
// associations, then garbage-collects rows left without references.
// Removing data that was never stored is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, data *histdata.Data) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove year %d: begin tx: %w", data.Year, err)
	}
	defer tx.Rollback()

	var yearID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM years WHERE year = ?`, data.Year).Scan(&yearID)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown year: nothing to remove.
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("remove year %d: %w", data.Year, err)
	}

	for _, country := range data.Countries {
		if err := removeCountry(ctx, tx, yearID, country); err != nil {
			return fmt.Errorf("remove year %d: country %q: %w", data.Year, country.Name, err)
		}
	}

	for _, city := range data.Cities {
		if err := removeCity(ctx, tx, yearID, city.Name); err != nil {
			return fmt.Errorf("remove year %d: city %q: %w", data.Year, city.Name, err)
		}
	}

	if data.Note != nil {
		if err := removeNote(ctx, tx, yearID, data.Note.Text); err != nil {
			return fmt.Errorf("remove year %d: note: %w", data.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remove year %d: commit: %w", data.Year, err)
	}
	return nil
}

func upsertCountry(ctx context.Context, tx *sql.Tx, yearID int64, country histdata.Country) error {
	encoded := histdata.EncodeContour(country.Contour)
	hash := histdata.BorderHash(encoded)

	countryID, err := findOrCreateCountry(ctx, tx, country.Name)
	if err != nil {
		return err
	}

	var relID, borderID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id, borderId FROM yearCountries WHERE yearId = ? AND countryId = ?
	`, yearID, countryID).Scan(&relID, &borderID)
	if errors.Is(err, sql.ErrNoRows) {
		// First time this country appears in this year.
		borderID, err = findOrCreateBorder(ctx, tx, hash, encoded)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO yearCountries (yearId, countryId, borderId) VALUES (?, ?, ?)
		`, yearID, countryID, borderID)
		if err != nil {
			return fmt.Errorf("insert relationship: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query relationship: %w", err)
	}

	var storedHash string
	if err := tx.QueryRowContext(ctx, `SELECT hash FROM borders WHERE id = ?`, borderID).Scan(&storedHash); err != nil {
		return fmt.Errorf("query border hash: %w", err)
	}
	if storedHash == hash {
		// Unchanged content, avoid needless writes.
		return nil
	}

	var others int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM yearCountries WHERE borderId = ? AND id != ?
	`, borderID, relID).Scan(&others)
	if err != nil {
		return fmt.Errorf("count border references: %w", err)
	}

	if others == 0 {
		// Exclusively owned: replace in place. The delete cascades and
		// removes the relationship row, so it is re-inserted below.
		if _, err := tx.ExecContext(ctx, `DELETE FROM borders WHERE id = ?`, borderID); err != nil {
			return fmt.Errorf("delete exclusive border: %w", err)
		}
		newBorderID, err := findOrCreateBorder(ctx, tx, hash, encoded)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO yearCountries (yearId, countryId, borderId) VALUES (?, ?, ?)
		`, yearID, countryID, newBorderID)
		if err != nil {
			return fmt.Errorf("re-insert relationship: %w", err)
		}
		return nil
	}

	// Shared with other relationships: fork. Only this relationship's
	// pointer moves; the shared row stays for the other referents.
	newBorderID, err := findOrCreateBorder(ctx, tx, hash, encoded)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE yearCountries SET borderId = ? WHERE id = ?`, newBorderID, relID)
	if err != nil {
		return fmt.Errorf("repoint relationship: %w", err)
	}
	return nil
}

func upsertCity(ctx context.Context, tx *sql.Tx, yearID int64, city histdata.City) error {
	// Global overwrite by name: every year referencing this city sees
	// the new coordinate.
	_, err := tx.ExecContext(ctx, `
		INSERT INTO cities (name, latitude, longitude) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude
	`, city.Name, float64(city.Coordinate.Latitude), float64(city.Coordinate.Longitude))
	if err != nil {
		return fmt.Errorf("upsert city: %w", err)
	}

	var cityID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM cities WHERE name = ?`, city.Name).Scan(&cityID); err != nil {
		return fmt.Errorf("resolve city id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO yearCities (yearId, cityId) VALUES (?, ?)
		ON CONFLICT(yearId, cityId) DO NOTHING
	`, yearID, cityID)
	if err != nil {
		return fmt.Errorf("insert city membership: %w", err)
	}
	return nil
}

func upsertNote(ctx context.Context, tx *sql.Tx, yearID int64, text string) error {
	hash := histdata.NoteHash(text)

	var noteID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM notes WHERE hash = ?`, hash).Scan(&noteID)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, `INSERT INTO notes (hash, text) VALUES (?, ?)`, hash, text)
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
		if noteID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert note: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("query note: %w", err)
	}

	var oldNoteID int64
	err = tx.QueryRowContext(ctx, `SELECT noteId FROM yearNotes WHERE yearId = ?`, yearID).Scan(&oldNoteID)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx, `INSERT INTO yearNotes (yearId, noteId) VALUES (?, ?)`, yearID, noteID)
		if err != nil {
			return fmt.Errorf("insert note link: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query note link: %w", err)
	}

	if oldNoteID == noteID {
		return nil
	}

	// Repoint first, then GC the previous note if this was its last
	// referencing year. Notes are never forked: the year-to-note link
	// is one-to-one on the year side, so repointing cannot disturb
	// another year.
	if _, err := tx.ExecContext(ctx, `UPDATE yearNotes SET noteId = ? WHERE yearId = ?`, noteID, yearID); err != nil {
		return fmt.Errorf("repoint note link: %w", err)
	}

	var refs int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM yearNotes WHERE noteId = ?`, oldNoteID).Scan(&refs); err != nil {
		return fmt.Errorf("count note references: %w", err)
	}
	if refs == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, oldNoteID); err != nil {
			return fmt.Errorf("delete orphaned note: %w", err)
		}
	}
	return nil
}

func removeCountry(ctx context.Context, tx *sql.Tx, yearID int64, country histdata.Country) error {
	hash := histdata.ContourHash(country.Contour)

	var countryID int64
	haveCountry := true
	err := tx.QueryRowContext(ctx, `SELECT id FROM countries WHERE name = ?`, country.Name).Scan(&countryID)
	if errors.Is(err, sql.ErrNoRows) {
		haveCountry = false
	} else if err != nil {
		return fmt.Errorf("resolve country: %w", err)
	}

	var borderID int64
	haveBorder := true
	err = tx.QueryRowContext(ctx, `SELECT id FROM borders WHERE hash = ?`, hash).Scan(&borderID)
	if errors.Is(err, sql.ErrNoRows) {
		haveBorder = false
	} else if err != nil {
		return fmt.Errorf("resolve border: %w", err)
	}

	// Fail closed: only a fully resolved (year, country, border) triple
	// deletes anything.
	if haveCountry && haveBorder {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM yearCountries WHERE yearId = ? AND countryId = ? AND borderId = ?
		`, yearID, countryID, borderID)
		if err != nil {
			return fmt.Errorf("delete relationship: %w", err)
		}
	}

	if haveCountry {
		if err := gcUnreferenced(ctx, tx, "countries", "yearCountries", "countryId", countryID); err != nil {
			return err
		}
	}
	if haveBorder {
		if err := gcUnreferenced(ctx, tx, "borders", "yearCountries", "borderId", borderID); err != nil {
			return err
		}
	}
	return nil
}

func removeCity(ctx context.Context, tx *sql.Tx, yearID int64, name string) error {
	var cityID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM cities WHERE name = ?`, name).Scan(&cityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve city: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM yearCities WHERE yearId = ? AND cityId = ?`, yearID, cityID)
	if err != nil {
		return fmt.Errorf("delete city membership: %w", err)
	}

	// Dropping the last membership discards the coordinate with the
	// row; acceptable because city identity is by name alone.
	return gcUnreferenced(ctx, tx, "cities", "yearCities", "cityId", cityID)
}

func removeNote(ctx context.Context, tx *sql.Tx, yearID int64, text string) error {
	hash := histdata.NoteHash(text)

	var noteID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM notes WHERE hash = ?`, hash).Scan(&noteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve note: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM yearNotes WHERE yearId = ? AND noteId = ?`, yearID, noteID)
	if err != nil {
		return fmt.Errorf("delete note link: %w", err)
	}

	return gcUnreferenced(ctx, tx, "notes", "yearNotes", "noteId", noteID)
}

// gcUnreferenced deletes a row when no join row references it anymore.
// The reference count is always derived from the join table at decision
// time, never stored.
func gcUnreferenced(ctx context.Context, tx *sql.Tx, table, joinTable, joinColumn string, id int64) error {
	var refs int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, joinTable, joinColumn)
	if err := tx.QueryRowContext(ctx, query, id).Scan(&refs); err != nil {
		return fmt.Errorf("count %s references: %w", table, err)
	}
	if refs > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id); err != nil {
		return fmt.Errorf("delete unreferenced %s row: %w", table, err)
	}
	return nil
}

func findOrCreateYear(ctx context.Context, tx *sql.Tx, year int) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM years WHERE year = ?`, year).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, `INSERT INTO years (year) VALUES (?)`, year)
		if err != nil {
			return 0, fmt.Errorf("insert year: %w", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("query year: %w", err)
	}
	return id, nil
}

func findOrCreateCountry(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM countries WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, `INSERT INTO countries (name) VALUES (?)`, name)
		if err != nil {
			return 0, fmt.Errorf("insert country: %w", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("query country: %w", err)
	}
	return id, nil
}

func findOrCreateBorder(ctx context.Context, tx *sql.Tx, hash string, encoded []byte) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM borders WHERE hash = ?`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, `INSERT INTO borders (hash, contour) VALUES (?, ?)`, hash, encoded)
		if err != nil {
			return 0, fmt.Errorf("insert border: %w", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("query border: %w", err)
	}
	return id, nil
}
