package csv

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestIdentity(t *testing.T) {
	row := []string{"a", "", `"b,c"`}
	got, err := Identity{}.Create(row)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, row) {
		t.Errorf("got %q, want %q", got, row)
	}
}

func TestStudentRecordFactory(t *testing.T) {
	tests := []struct {
		name    string
		row     []string
		want    StudentRecord
		wantErr string
	}{
		{
			name: "valid",
			row:  []string{"7", "Nim", "CS"},
			want: StudentRecord{StudentID: 7, Name: "Nim", Major: "CS"},
		},
		{
			name: "padded id",
			row:  []string{" 7 ", "Nim", "CS"},
			want: StudentRecord{StudentID: 7, Name: "Nim", Major: "CS"},
		},
		{
			name:    "too few columns",
			row:     []string{"7", "Nim"},
			wantErr: "expected 3 columns, got 2",
		},
		{
			name:    "too many columns",
			row:     []string{"7", "Nim", "CS", "extra"},
			wantErr: "expected 3 columns, got 4",
		},
		{
			name:    "non-numeric id",
			row:     []string{"seven", "Nim", "CS"},
			wantErr: `invalid value "seven" in column 0`,
		},
	}

	factory := StudentRecordFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := factory.Create(tt.row)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %+v, want %+v", got, tt.want)
				}
				return
			}

			var ff *FactoryFailure
			if !errors.As(err, &ff) {
				t.Fatalf("expected *FactoryFailure, got %T: %v", err, err)
			}
			if !strings.Contains(ff.Message, tt.wantErr) {
				t.Errorf("Message = %q, want it to contain %q", ff.Message, tt.wantErr)
			}
			if !strings.Contains(ff.Message, "StudentRecord") {
				t.Errorf("Message = %q, want record type named", ff.Message)
			}
			if !slices.Equal(ff.Row, tt.row) {
				t.Errorf("Row = %q, want %q", ff.Row, tt.row)
			}
			if errors.Unwrap(err) != nil {
				t.Errorf("conversion cause leaked: %v", errors.Unwrap(err))
			}
		})
	}
}

func TestStarFactory(t *testing.T) {
	factory := StarFactory()

	got, err := factory.Create([]string{"0", "Sol", "0", "0.5", "-1.25"})
	if err != nil {
		t.Fatal(err)
	}
	want := Star{StarID: 0, ProperName: "Sol", Coordinates: [3]float64{0, 0.5, -1.25}}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	for _, row := range [][]string{
		{"1", "Sol", "0", "0"},
		{"1", "Sol", "x", "0", "0"},
		{"id", "Sol", "0", "0", "0"},
	} {
		if _, err := factory.Create(row); err == nil {
			t.Errorf("Create(%q): expected error", row)
		}
	}
}

func TestNewStar(t *testing.T) {
	if _, err := NewStar(1, "Vega", []float64{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, coords := range [][]float64{nil, {1, 2}, {1, 2, 3, 4}} {
		if _, err := NewStar(1, "Vega", coords); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("NewStar(%v): got %v, want ErrInvalidCoordinates", coords, err)
		}
	}
}

func TestFactoryFailure_CopiesRow(t *testing.T) {
	row := []string{"a", "b"}
	ff := NewFactoryFailure("nope", row)
	row[0] = "mutated"
	if ff.Row[0] != "a" {
		t.Errorf("Row aliased caller slice: %q", ff.Row)
	}
	if ff.Error() != "nope" {
		t.Errorf("Error() = %q", ff.Error())
	}
}

func TestFixedArity_BuildError(t *testing.T) {
	f := FixedArity[int]{
		Name:    "Thing",
		Columns: 1,
		Build: func(f *Fields) (int, error) {
			return 0, errors.New("out of range")
		},
	}
	_, err := f.Create([]string{"1"})
	var ff *FactoryFailure
	if !errors.As(err, &ff) {
		t.Fatalf("expected *FactoryFailure, got %T", err)
	}
	if ff.Message != "error creating Thing: out of range" {
		t.Errorf("Message = %q", ff.Message)
	}
}
