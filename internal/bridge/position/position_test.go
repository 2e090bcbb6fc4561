package position

import "testing"

func TestNewOneBasedRejectsZero(t *testing.T) {
	if _, err := NewOneBased(0, 5); err == nil {
		t.Error("expected error for line 0")
	}
	if _, err := NewOneBased(5, 0); err == nil {
		t.Error("expected error for character 0")
	}
	if _, err := NewOneBased(1, 1); err != nil {
		t.Errorf("expected (1,1) to succeed, got %v", err)
	}
}

func TestNewZeroBasedRejectsNegative(t *testing.T) {
	if _, err := NewZeroBased(-1, 0); err == nil {
		t.Error("expected error for negative line")
	}
	if _, err := NewZeroBased(0, -1); err == nil {
		t.Error("expected error for negative character")
	}
	if _, err := NewZeroBased(0, 0); err != nil {
		t.Errorf("expected (0,0) to succeed, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []OneBased{
		{Line: 1, Character: 1},
		{Line: 38, Character: 14},
		{Line: 100, Character: 1},
	}

	for _, p := range tests {
		got := p.ToZeroBased().ToOneBased()
		if got != p {
			t.Errorf("round trip one->zero->one: got %+v, want %+v", got, p)
		}
	}

	zeroes := []ZeroBased{
		{Line: 0, Character: 0},
		{Line: 37, Character: 13},
	}
	for _, z := range zeroes {
		got := z.ToOneBased().ToZeroBased()
		if got != z {
			t.Errorf("round trip zero->one->zero: got %+v, want %+v", got, z)
		}
	}
}

func TestConversionIsPointwiseSubtraction(t *testing.T) {
	p, _ := NewOneBased(38, 14)
	z := p.ToZeroBased()
	if z.Line != 37 || z.Character != 13 {
		t.Errorf("expected (37,13), got (%d,%d)", z.Line, z.Character)
	}
}

func TestRangeConversion(t *testing.T) {
	start, _ := NewOneBased(1, 1)
	end, _ := NewOneBased(2, 5)
	r := OneBasedRange{Start: start, End: end}

	zr := r.ToZeroBased()
	if zr.Start != (ZeroBased{Line: 0, Character: 0}) {
		t.Errorf("unexpected start: %+v", zr.Start)
	}
	if zr.End != (ZeroBased{Line: 1, Character: 4}) {
		t.Errorf("unexpected end: %+v", zr.End)
	}

	back := zr.ToOneBased()
	if back != r {
		t.Errorf("range round trip mismatch: got %+v, want %+v", back, r)
	}
}
