package catalogue

import (
	"fmt"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/storage"
)

// ToRecord converts a star into a storage record identified in its first
// origin. lcPath is stored as given.
func ToRecord(s *domain.Star, lcPath string) (*storage.StarRecord, error) {
	origins := s.Origins()
	if len(origins) == 0 {
		return nil, fmt.Errorf("%w: star has no identity", domain.ErrQueryInput)
	}
	id := s.Ident[origins[0]]
	r := &storage.StarRecord{
		Origin:     origins[0],
		Identifier: id.Identifier,
		Name:       id.Name,
		Class:      s.Class,
		LCPath:     lcPath,
	}
	if s.Coo != nil {
		ra, dec := s.Coo.RA, s.Coo.Dec
		r.RA, r.Dec = &ra, &dec
	}
	for key, dst := range map[string]**float64{
		storage.KeyBMag: &r.BMag,
		storage.KeyVMag: &r.VMag,
		storage.KeyRMag: &r.RMag,
		storage.KeyIMag: &r.IMag,
	} {
		if v, ok := s.MoreFloat(key); ok {
			*dst = &v
		}
	}
	return r, nil
}
