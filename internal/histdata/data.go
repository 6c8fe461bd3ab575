package histdata

// Coordinate is a point on the map in degrees. Compared by exact float
// equality: coordinates are stored and round-tripped as float32, never
// recomputed, so equality is well defined.
type Coordinate struct {
	Latitude  float32 `json:"latitude" yaml:"latitude"`
	Longitude float32 `json:"longitude" yaml:"longitude"`
}

// Country is a named polygon for one year. The contour order is
// meaningful - it defines the polygon boundary and is preserved through
// the codec.
type Country struct {
	Name    string       `json:"name" yaml:"name"`
	Contour []Coordinate `json:"contour" yaml:"contour"`
}

// City is a named location. City identity is by name alone across all
// years; see the store package for the consequences.
type City struct {
	Name       string     `json:"name" yaml:"name"`
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
}

// Note is the free-form yearly annotation. At most one per year.
type Note struct {
	Text string `json:"text" yaml:"text"`
}

// Data is the full snapshot of one historical year.
type Data struct {
	Year      int       `json:"year" yaml:"year"`
	Countries []Country `json:"countries,omitempty" yaml:"countries,omitempty"`
	Cities    []City    `json:"cities,omitempty" yaml:"cities,omitempty"`
	Note      *Note     `json:"note,omitempty" yaml:"note,omitempty"`
}

// Equal reports whether two Country values have the same name and the
// same contour in the same order.
func (c Country) Equal(other Country) bool {
	if c.Name != other.Name || len(c.Contour) != len(other.Contour) {
		return false
	}
	for i, p := range c.Contour {
		if p != other.Contour[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two snapshots describe the same year content.
// Countries and cities are compared as sets - the store does not
// guarantee a load order matching the upsert order across merges.
func (d *Data) Equal(other *Data) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Year != other.Year {
		return false
	}
	if len(d.Countries) != len(other.Countries) || len(d.Cities) != len(other.Cities) {
		return false
	}
	for _, c := range d.Countries {
		found := false
		for _, o := range other.Countries {
			if c.Equal(o) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, c := range d.Cities {
		found := false
		for _, o := range other.Cities {
			if c == o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if (d.Note == nil) != (other.Note == nil) {
		return false
	}
	if d.Note != nil && d.Note.Text != other.Note.Text {
		return false
	}
	return true
}
