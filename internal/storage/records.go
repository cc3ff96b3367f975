package storage

import (
	"fmt"

	"lightcurve-lab/internal/domain"
)

// Magnitude keys stored with a star, as used in domain.Star.More.
const (
	KeyBMag = "b_mag"
	KeyVMag = "v_mag"
	KeyRMag = "r_mag"
	KeyIMag = "i_mag"
)

// StarRecord is a row of the local star database.
type StarRecord struct {
	Origin     string
	Identifier string
	Name       string
	RA         *float64 // degrees
	Dec        *float64 // degrees
	BMag       *float64
	VMag       *float64
	RMag       *float64
	IMag       *float64
	Class      string
	LCPath     string // light-curve file, empty if none
	CreatedAt  int64  // unix ms, set by the store
}

// Validate checks the key and coordinate ranges.
func (r *StarRecord) Validate() error {
	if r == nil || r.Origin == "" || r.Identifier == "" {
		return ErrInvalidInput
	}
	if (r.RA == nil) != (r.Dec == nil) {
		return fmt.Errorf("%w: ra and dec must be set together", ErrInvalidInput)
	}
	if r.RA != nil {
		if _, err := domain.NewCoordinates(*r.RA, *r.Dec, domain.UnitDegrees); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

// Coordinates returns the position of the star, nil if unknown.
func (r *StarRecord) Coordinates() *domain.Coordinates {
	if r.RA == nil || r.Dec == nil {
		return nil
	}
	c, err := domain.NewCoordinates(*r.RA, *r.Dec, domain.UnitDegrees)
	if err != nil {
		return nil
	}
	return &c
}

// ToStar converts the record into a star without light curve.
func (r *StarRecord) ToStar() *domain.Star {
	s := domain.NewStar(r.Origin, r.Name, r.Identifier)
	s.Coo = r.Coordinates()
	s.Class = r.Class
	for key, v := range map[string]*float64{KeyBMag: r.BMag, KeyVMag: r.VMag, KeyRMag: r.RMag, KeyIMag: r.IMag} {
		if v != nil {
			s.More[key] = *v
		}
	}
	return s
}

// StarQuery selects stars. Empty fields do not filter.
type StarQuery struct {
	Origin     string
	Identifier string
	Name       string
	Class      string

	// Cone search: all three must be set together.
	RA, Dec *float64 // degrees
	Delta   float64  // radius in arcseconds

	Limit int // 0 = unlimited
}

// Validate checks the cone search fields.
func (q StarQuery) Validate() error {
	if (q.RA == nil) != (q.Dec == nil) {
		return fmt.Errorf("%w: ra and dec must be set together", ErrInvalidInput)
	}
	if q.RA != nil && q.Delta <= 0 {
		return fmt.Errorf("%w: cone search needs a positive delta", ErrInvalidInput)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidInput)
	}
	return nil
}

// Matches reports whether r satisfies every set field of q.
func (q StarQuery) Matches(r *StarRecord) bool {
	if q.Origin != "" && r.Origin != q.Origin {
		return false
	}
	if q.Identifier != "" && r.Identifier != q.Identifier {
		return false
	}
	if q.Name != "" && r.Name != q.Name {
		return false
	}
	if q.Class != "" && r.Class != q.Class {
		return false
	}
	if q.RA != nil {
		center, err := domain.NewCoordinates(*q.RA, *q.Dec, domain.UnitDegrees)
		if err != nil {
			return false
		}
		coo := r.Coordinates()
		if coo == nil || center.Separation(*coo)*3600 > q.Delta {
			return false
		}
	}
	return true
}

// TrialRecord is a persisted estimator trial.
type TrialRecord struct {
	RunID       string
	TrialID     string
	TrialIndex  int
	Descriptors string // comma separated names
	Deciders    string // comma separated names

	Precision         float64
	TruePositiveRate  float64
	TrueNegativeRate  float64
	FalsePositiveRate float64
	FalseNegativeRate float64
	Score             float64
	AUC               float64

	Params     string // JSON of the trial params
	IsBest     bool
	DurationMs int64
	CreatedAt  int64 // unix ms
}

// Validate checks the trial key.
func (r *TrialRecord) Validate() error {
	if r == nil || r.RunID == "" || r.TrialID == "" || r.TrialIndex < 0 {
		return ErrInvalidInput
	}
	return nil
}

// ROCPointRecord is one threshold sample of a trial ROC curve.
type ROCPointRecord struct {
	RunID             string
	TrialID           string
	TrialIndex        int
	Threshold         float64
	TruePositiveRate  float64
	FalsePositiveRate float64
}
