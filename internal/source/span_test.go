package source

import "testing"

func TestSpan_Basics(t *testing.T) {
	s := Span{File: 1, Start: 4, End: 10}
	if s.Empty() {
		t.Error("span should not be empty")
	}
	if s.Len() != 6 {
		t.Errorf("Len = %d, want 6", s.Len())
	}
	if (Span{File: 1, Start: 4, End: 4}).Empty() == false {
		t.Error("zero-length span should be empty")
	}
}

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Span
		want  Span
	}{
		{
			name: "extends_both_sides",
			a:    Span{File: 0, Start: 5, End: 8},
			b:    Span{File: 0, Start: 2, End: 12},
			want: Span{File: 0, Start: 2, End: 12},
		},
		{
			name: "contained",
			a:    Span{File: 0, Start: 2, End: 12},
			b:    Span{File: 0, Start: 5, End: 8},
			want: Span{File: 0, Start: 2, End: 12},
		},
		{
			name: "different_file_ignored",
			a:    Span{File: 0, Start: 5, End: 8},
			b:    Span{File: 1, Start: 0, End: 100},
			want: Span{File: 0, Start: 5, End: 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpan_Points(t *testing.T) {
	s := Span{File: 3, Start: 10, End: 20}

	start := s.StartPoint()
	if start != (Span{File: 3, Start: 10, End: 10}) {
		t.Errorf("StartPoint = %v", start)
	}
	end := s.EndPoint()
	if end != (Span{File: 3, Start: 20, End: 20}) {
		t.Errorf("EndPoint = %v", end)
	}
	if !start.Empty() || !end.Empty() {
		t.Error("collapsed spans must be empty")
	}
}
