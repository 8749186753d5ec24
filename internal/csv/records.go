package csv

import "fmt"

// StudentRecord is one row of a student roster.
type StudentRecord struct {
	StudentID int    `json:"studentId"`
	Name      string `json:"name"`
	Major     string `json:"major"`
}

// StudentRecordFactory reads rows of the form id,name,major.
func StudentRecordFactory() RowFactory[StudentRecord] {
	return FixedArity[StudentRecord]{
		Name:    "StudentRecord",
		Columns: 3,
		Build: func(f *Fields) (StudentRecord, error) {
			return StudentRecord{
				StudentID: f.Int(0),
				Name:      f.String(1),
				Major:     f.String(2),
			}, nil
		},
	}
}

// Star is a catalogued star with Cartesian coordinates.
type Star struct {
	StarID      int        `json:"starId"`
	ProperName  string     `json:"properName"`
	Coordinates [3]float64 `json:"coordinates"`
}

// NewStar requires exactly three coordinates.
func NewStar(id int, properName string, coords []float64) (Star, error) {
	if len(coords) != 3 {
		return Star{}, fmt.Errorf("%w: got %d", ErrInvalidCoordinates, len(coords))
	}
	return Star{
		StarID:      id,
		ProperName:  properName,
		Coordinates: [3]float64{coords[0], coords[1], coords[2]},
	}, nil
}

// StarFactory reads rows of the form id,name,x,y,z.
func StarFactory() RowFactory[Star] {
	return FixedArity[Star]{
		Name:    "Star",
		Columns: 5,
		Build: func(f *Fields) (Star, error) {
			id, name := f.Int(0), f.String(1)
			coords := []float64{f.Float(2), f.Float(3), f.Float(4)}
			return NewStar(id, name, coords)
		},
	}
}
