// Package position implements the two coordinate systems the core straddles:
// 1-based positions at the agent boundary and 0-based positions on the LSP
// wire, as two distinct types so the two are never silently mixed.
// NewOneBased and NewZeroBased validate bounds; the fields are exported,
// so a struct literal builds a position without that check.
package position

import "fmt"

// OneBased is an agent-facing position. Line and Character are both >= 1.
type OneBased struct {
	Line      int
	Character int
}

// ZeroBased is an LSP wire position. Line and Character are both >= 0.
type ZeroBased struct {
	Line      int
	Character int
}

// NewOneBased validates and constructs a OneBased position.
func NewOneBased(line, character int) (OneBased, error) {
	if line < 1 {
		return OneBased{}, fmt.Errorf("position: line must be >= 1, got %d", line)
	}
	if character < 1 {
		return OneBased{}, fmt.Errorf("position: character must be >= 1, got %d", character)
	}
	return OneBased{Line: line, Character: character}, nil
}

// NewZeroBased validates and constructs a ZeroBased position.
func NewZeroBased(line, character int) (ZeroBased, error) {
	if line < 0 {
		return ZeroBased{}, fmt.Errorf("position: line must be >= 0, got %d", line)
	}
	if character < 0 {
		return ZeroBased{}, fmt.Errorf("position: character must be >= 0, got %d", character)
	}
	return ZeroBased{Line: line, Character: character}, nil
}

// ToZeroBased converts a OneBased position to its ZeroBased equivalent.
// Safe because OneBased invariants guarantee the subtraction stays >= 0.
func (p OneBased) ToZeroBased() ZeroBased {
	return ZeroBased{Line: p.Line - 1, Character: p.Character - 1}
}

// ToOneBased converts a ZeroBased position to its OneBased equivalent.
// Safe because ZeroBased invariants guarantee the addition stays >= 1.
func (p ZeroBased) ToOneBased() OneBased {
	return OneBased{Line: p.Line + 1, Character: p.Character + 1}
}

// OneBasedRange is a pair of agent-facing (1-based) positions.
type OneBasedRange struct {
	Start OneBased
	End   OneBased
}

// ZeroBasedRange is the wire-side counterpart of OneBasedRange.
type ZeroBasedRange struct {
	Start ZeroBased
	End   ZeroBased
}

// ToZeroBased converts both endpoints of a OneBasedRange.
func (r OneBasedRange) ToZeroBased() ZeroBasedRange {
	return ZeroBasedRange{Start: r.Start.ToZeroBased(), End: r.End.ToZeroBased()}
}

// ToOneBased converts both endpoints of a ZeroBasedRange.
func (r ZeroBasedRange) ToOneBased() OneBasedRange {
	return OneBasedRange{Start: r.Start.ToOneBased(), End: r.End.ToOneBased()}
}
