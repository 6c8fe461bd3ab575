package histdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryEqual(t *testing.T) {
	base := Country{Name: "Ruthenia", Contour: []Coordinate{{1, 2}, {3, 4}}}

	assert.True(t, base.Equal(Country{Name: "Ruthenia", Contour: []Coordinate{{1, 2}, {3, 4}}}))
	assert.False(t, base.Equal(Country{Name: "Moravia", Contour: []Coordinate{{1, 2}, {3, 4}}}))
	assert.False(t, base.Equal(Country{Name: "Ruthenia", Contour: []Coordinate{{3, 4}, {1, 2}}}),
		"contour order is part of country identity")
	assert.False(t, base.Equal(Country{Name: "Ruthenia", Contour: []Coordinate{{1, 2}}}))
}

func TestDataEqualIgnoresSliceOrder(t *testing.T) {
	a := &Data{
		Year: 1900,
		Countries: []Country{
			{Name: "A", Contour: []Coordinate{{1, 1}}},
			{Name: "B", Contour: []Coordinate{{2, 2}}},
		},
		Cities: []City{
			{Name: "X", Coordinate: Coordinate{1, 1}},
			{Name: "Y", Coordinate: Coordinate{2, 2}},
		},
	}
	b := &Data{
		Year: 1900,
		Countries: []Country{
			{Name: "B", Contour: []Coordinate{{2, 2}}},
			{Name: "A", Contour: []Coordinate{{1, 1}}},
		},
		Cities: []City{
			{Name: "Y", Coordinate: Coordinate{2, 2}},
			{Name: "X", Coordinate: Coordinate{1, 1}},
		},
	}

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
}

func TestDataEqualNote(t *testing.T) {
	withNote := &Data{Year: 1900, Note: &Note{Text: "Test"}}
	without := &Data{Year: 1900}

	assert.False(t, withNote.Equal(without))
	assert.False(t, without.Equal(withNote))
	assert.True(t, withNote.Equal(&Data{Year: 1900, Note: &Note{Text: "Test"}}))
	assert.False(t, withNote.Equal(&Data{Year: 1900, Note: &Note{Text: "Other"}}))
}

func TestDataEqualNil(t *testing.T) {
	var a *Data
	assert.True(t, a.Equal(nil))
	assert.False(t, a.Equal(&Data{Year: 1900}))
	assert.False(t, (&Data{Year: 1900}).Equal(nil))
}

func TestDataEqualDifferentYear(t *testing.T) {
	assert.False(t, (&Data{Year: 1900}).Equal(&Data{Year: 1901}))
}
