package source

import "testing"

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantChanged bool
	}{
		{"no_cr", "a\nb", "a\nb", false},
		{"crlf", "a\r\nb", "a\nb", true},
		{"lone_cr_kept", "a\rb", "a\rb", false},
		{"mixed", "a\r\nb\rc\r\n", "a\nb\rc\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF([]byte(tt.in))
			if string(got) != tt.want || changed != tt.wantChanged {
				t.Errorf("normalizeCRLF(%q) = %q, %v; want %q, %v", tt.in, got, changed, tt.want, tt.wantChanged)
			}
		})
	}
}

func TestToLineCol(t *testing.T) {
	idx := buildLineIndex([]byte("ab\ncd\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // сам '\n' принадлежит своей строке
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
	}
	for _, tt := range tests {
		if got := toLineCol(idx, tt.off); got != tt.want {
			t.Errorf("toLineCol(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
}
