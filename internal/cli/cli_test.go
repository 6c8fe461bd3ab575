package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histomap/histomap/internal/histdata"
	"github.com/histomap/histomap/internal/store"
)

// seedDatabase writes a snapshot straight through the store and returns
// the database path.
func seedDatabase(t *testing.T, data *histdata.Data) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	if data != nil {
		require.NoError(t, st.Upsert(context.Background(), data))
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShow_Text(t *testing.T) {
	path := seedDatabase(t, &histdata.Data{
		Year: 1900,
		Countries: []histdata.Country{
			{Name: "Ruthenia", Contour: []histdata.Coordinate{{Latitude: 1, Longitude: 2}, {Latitude: 3, Longitude: 4}}},
			{Name: "Moravia", Contour: []histdata.Coordinate{{Latitude: 5, Longitude: 6}}},
		},
		Cities: []histdata.City{
			{Name: "Lviv", Coordinate: histdata.Coordinate{Latitude: 49.84, Longitude: 24.03}},
		},
		Note: &histdata.Note{Text: "Test"},
	})

	out, err := runCommand(t, "show", "--db", path, "1900")
	require.NoError(t, err)

	assert.Contains(t, out, "Year 1900")
	assert.Contains(t, out, "Ruthenia: 2 contour points")
	assert.Contains(t, out, "Moravia: 1 contour points")
	assert.Contains(t, out, "Lviv")
	assert.Contains(t, out, "Note: Test")

	// Collated output: Moravia sorts before Ruthenia.
	assert.Less(t, bytes.Index([]byte(out), []byte("Moravia")), bytes.Index([]byte(out), []byte("Ruthenia")))
}

func TestShow_JSON(t *testing.T) {
	path := seedDatabase(t, &histdata.Data{
		Year:   1900,
		Cities: []histdata.City{{Name: "Lviv", Coordinate: histdata.Coordinate{Latitude: 1, Longitude: 2}}},
	})

	out, err := runCommand(t, "show", "--db", path, "1900", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   histdata.Data `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1900, resp.Data.Year)
	require.Len(t, resp.Data.Cities, 1)
	assert.Equal(t, "Lviv", resp.Data.Cities[0].Name)
}

func TestShow_UnknownYearIsEmptySnapshot(t *testing.T) {
	path := seedDatabase(t, nil)

	out, err := runCommand(t, "show", "--db", path, "1850")
	require.NoError(t, err)
	assert.Contains(t, out, "Year 1850")
	assert.Contains(t, out, "Countries (0)")
	assert.Contains(t, out, "Note: (none)")
}

func TestShow_InvalidYear(t *testing.T) {
	path := seedDatabase(t, nil)

	_, err := runCommand(t, "show", "--db", path, "not-a-year")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShow_InvalidFormat(t *testing.T) {
	path := seedDatabase(t, nil)

	_, err := runCommand(t, "show", "--db", path, "1900", "--format", "xml")
	assert.Error(t, err)
}

func TestStats_Text(t *testing.T) {
	path := seedDatabase(t, &histdata.Data{
		Year: 1900,
		Countries: []histdata.Country{
			{Name: "A", Contour: []histdata.Coordinate{{Latitude: 1, Longitude: 1}}},
			{Name: "B", Contour: []histdata.Coordinate{{Latitude: 1, Longitude: 1}}},
		},
	})

	out, err := runCommand(t, "stats", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Borders:        1 (1 shared)")
	assert.Contains(t, out, "Countries:      2")
}

func TestStats_JSON(t *testing.T) {
	path := seedDatabase(t, &histdata.Data{
		Year: 1900,
		Note: &histdata.Note{Text: "Test"},
	})

	out, err := runCommand(t, "stats", "--db", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Years       int   `json:"years"`
			Notes       int   `json:"notes"`
			StoredYears []int `json:"stored_years"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Years)
	assert.Equal(t, 1, resp.Data.Notes)
	assert.Equal(t, []int{1900}, resp.Data.StoredYears)
}

func TestExitError(t *testing.T) {
	base := errors.New("boom")
	err := WrapExitError(ExitCommandError, "context", base)

	assert.Equal(t, "context: boom", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, base)

	plain := NewExitError(ExitFailure, "plain")
	assert.Equal(t, "plain", plain.Error())
	assert.Equal(t, ExitFailure, GetExitCode(plain))

	// Wrapped deeper in the chain it is still found.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("unknown")))
}
