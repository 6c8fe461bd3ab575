package store

import (
	"context"
	"fmt"
)

// Stats summarizes row counts for inspection tooling. SharedBorders
// counts borders rows referenced by more than one relationship - the
// payoff of content deduplication.
type Stats struct {
	Years         int `json:"years"`
	Countries     int `json:"countries"`
	Borders       int `json:"borders"`
	SharedBorders int `json:"shared_borders"`
	Cities        int `json:"cities"`
	Notes         int `json:"notes"`
}

// Stats computes current table counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM years`, &st.Years},
		{`SELECT COUNT(*) FROM countries`, &st.Countries},
		{`SELECT COUNT(*) FROM borders`, &st.Borders},
		{`SELECT COUNT(*) FROM (
			SELECT borderId FROM yearCountries GROUP BY borderId HAVING COUNT(*) > 1
		)`, &st.SharedBorders},
		{`SELECT COUNT(*) FROM cities`, &st.Cities},
		{`SELECT COUNT(*) FROM notes`, &st.Notes},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("stats: %w", err)
		}
	}

	return st, nil
}

// Years lists every year that has a row, ascending. A year row exists
// iff some operation has touched that year.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT year FROM years ORDER BY year ASC`)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("list years: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
