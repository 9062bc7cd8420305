package model

import "fmt"

// ValidationError reports a malformed or missing required field in an input
// file. Fatal: the run aborts before producing any output.
type ValidationError struct {
	File   string // input file path
	Record int    // 1-based record index within the file
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: record %d: %s", e.File, e.Record, e.Reason)
}

// UnknownCharacterError reports a mention whose character id is absent from
// the catalogue's character registry.
type UnknownCharacterError struct {
	CharacterID string
	LineNumber  int
}

func (e *UnknownCharacterError) Error() string {
	return fmt.Sprintf("line %d: unknown character %q (not in catalogue registry)", e.LineNumber, e.CharacterID)
}

// UnknownFormulaError reports a mention whose formula text appears nowhere in
// the catalogue. Fatal by default; in lenient mode such mentions are scored
// against the OTHER bucket and recorded as warnings instead.
type UnknownFormulaError struct {
	FormulaText string
	CharacterID string
	LineNumber  int
}

func (e *UnknownFormulaError) Error() string {
	return fmt.Sprintf("line %d: formula %q for character %q is not in the catalogue", e.LineNumber, e.FormulaText, e.CharacterID)
}

// InvalidProbabilityMassError is an internal assertion failure: a built
// distribution does not sum to 1.0 within tolerance, or carries a negative
// probability. Always a defect in the builder, never a data problem.
type InvalidProbabilityMassError struct {
	CharacterID string
	Sum         float64
}

func (e *InvalidProbabilityMassError) Error() string {
	return fmt.Sprintf("character %q: distribution mass %.9f does not sum to 1.0 within tolerance", e.CharacterID, e.Sum)
}
