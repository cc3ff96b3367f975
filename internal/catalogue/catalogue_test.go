package catalogue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/storage"
	"lightcurve-lab/internal/storage/memory"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const curve = "1 15.0 0.01\n2 15.2 0.01\n3 15.1 0.02\n"

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{NameCsvCatalogue, NameFileManager, NameLocalDbClient}, Names())

	_, err := New("OgleII", Query{}, Env{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = New(NameFileManager, Query{"path": "x", "ra": 1.0}, Env{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestFileManager(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_star.dat"), curve)
	writeFile(t, filepath.Join(dir, "a_star.dat"), curve)
	writeFile(t, filepath.Join(dir, "c_star.txt"), curve)
	ctx := context.Background()

	stars, err := Load(ctx, NameFileManager, Query{"path": dir, "star_class": "quasar"}, Env{})
	require.NoError(t, err)
	require.Len(t, stars, 2)
	assert.Equal(t, "a_star", stars[0].Name())
	assert.Equal(t, "b_star", stars[1].Name())
	assert.Equal(t, "quasar", stars[0].Class)
	assert.Equal(t, DefaultFileOrigin, stars[0].Origins()[0])
	require.NotNil(t, stars[0].LightCurve())
	assert.Equal(t, 3, stars[0].LightCurve().Len())

	stars, err = Load(ctx, NameFileManager, Query{"path": dir, "suffix": "txt", "db_ident": "macho"}, Env{})
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Equal(t, "macho", stars[0].Origins()[0])

	stars, err = Load(ctx, NameFileManager, Query{"path": dir, "files_limit": 1}, Env{})
	require.NoError(t, err)
	assert.Len(t, stars, 1)

	// relative paths resolve against the base dir
	stars, err = Load(ctx, NameFileManager, Query{"path": []any{"a_star.dat", "c_star.txt"}}, Env{BaseDir: dir})
	require.NoError(t, err)
	assert.Len(t, stars, 2)
}

func TestFileManager_EmptyAndMissing(t *testing.T) {
	ctx := context.Background()

	stars, err := Load(ctx, NameFileManager, Query{"path": t.TempDir()}, Env{})
	require.NoError(t, err)
	assert.Empty(t, stars)

	_, err = Load(ctx, NameFileManager, Query{"path": filepath.Join(t.TempDir(), "missing")}, Env{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.dat"), "1 x\n")
	_, err = Load(ctx, NameFileManager, Query{"path": dir}, Env{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestCsvCatalogue(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lc", "q1.dat"), curve)
	writeFile(t, filepath.Join(dir, "index.csv"), `name,origin,identifier,ra,dec,class,lc_path
Q1,sdss,J0001,10.5,-20.25,quasar,lc/q1.dat
S1,sdss,J0002,,,star,
Q2,,J0003,11,5,quasar,
`)
	ctx := context.Background()

	stars, err := Load(ctx, NameCsvCatalogue, Query{"path": "index.csv"}, Env{BaseDir: dir})
	require.NoError(t, err)
	require.Len(t, stars, 3)

	q1 := stars[0]
	assert.Equal(t, "Q1", q1.Name())
	assert.Equal(t, "J0001", q1.Ident["sdss"].Identifier)
	require.NotNil(t, q1.Coo)
	assert.InDelta(t, 10.5, q1.Coo.RA, 1e-12)
	assert.InDelta(t, -20.25, q1.Coo.Dec, 1e-12)
	require.NotNil(t, q1.LightCurve())

	assert.Nil(t, stars[1].Coo)
	assert.Nil(t, stars[1].LightCurve())
	assert.Equal(t, []string{DefaultFileOrigin}, stars[2].Origins())

	quasars, err := Load(ctx, NameCsvCatalogue, Query{"path": "index.csv", "star_class": "quasar"}, Env{BaseDir: dir})
	require.NoError(t, err)
	assert.Len(t, quasars, 2)
}

func TestCsvCatalogue_Errors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := New(NameCsvCatalogue, Query{}, Env{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	writeFile(t, filepath.Join(dir, "bad.csv"), "name,origin,identifier,ra,dec,class,lc_path\nX,o,1,abc,2,,\n")
	_, err = Load(ctx, NameCsvCatalogue, Query{"path": filepath.Join(dir, "bad.csv")}, Env{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	_, err = Load(ctx, NameCsvCatalogue, Query{"path": filepath.Join(dir, "none.csv")}, Env{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func ptr[T any](v T) *T {
	return &v
}

func TestLocalDbClient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lc", "near.dat"), curve)
	store := memory.NewStarStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*storage.StarRecord{
		{Origin: "ogle", Identifier: "near", RA: ptr(10.0), Dec: ptr(20.0), VMag: ptr(17.5), Class: "cepheid", LCPath: "lc/near.dat"},
		{Origin: "ogle", Identifier: "close", RA: ptr(10.0), Dec: ptr(20.002), Class: "rrlyr"},
		{Origin: "ogle", Identifier: "far", RA: ptr(50.0), Dec: ptr(-5.0), Class: "cepheid"},
	}))
	env := Env{StarStore: store, BaseDir: dir}

	stars, err := Load(ctx, NameLocalDbClient, Query{"ra": 10.0, "dec": 20.0, "delta": 10.0}, env)
	require.NoError(t, err)
	require.Len(t, stars, 2)
	names := []string{stars[0].Ident["ogle"].Identifier, stars[1].Ident["ogle"].Identifier}
	assert.ElementsMatch(t, []string{"near", "close"}, names)

	stars, err = Load(ctx, NameLocalDbClient, Query{"star_class": "cepheid"}, env)
	require.NoError(t, err)
	require.Len(t, stars, 2)
	for _, s := range stars {
		if s.Ident["ogle"].Identifier == "near" {
			require.NotNil(t, s.LightCurve())
			v, ok := s.MoreFloat(storage.KeyVMag)
			assert.True(t, ok)
			assert.Equal(t, 17.5, v)
		}
	}

	stars, err = Load(ctx, NameLocalDbClient, Query{"identifier": "near", "load_lc": false}, env)
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Nil(t, stars[0].LightCurve())

	stars, err = Load(ctx, NameLocalDbClient, Query{"origin": "asas"}, env)
	require.NoError(t, err)
	assert.Empty(t, stars)
}

func TestLocalDbClient_Errors(t *testing.T) {
	store := memory.NewStarStore()

	_, err := New(NameLocalDbClient, Query{}, Env{})
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	_, err = New(NameLocalDbClient, Query{"ra": 1.0, "dec": 2.0}, Env{StarStore: store})
	assert.ErrorIs(t, err, domain.ErrQueryInput)

	_, err = New(NameLocalDbClient, Query{"target": "lmc"}, Env{StarStore: store})
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}

func TestToRecord(t *testing.T) {
	s := domain.NewStar("ogle", "OGLE 1", "LMC_1")
	coo, err := domain.NewCoordinates(83.5, -69.1, domain.UnitDegrees)
	require.NoError(t, err)
	s.Coo = &coo
	s.Class = "cepheid"
	s.More[storage.KeyBMag] = 18.0
	s.More[storage.KeyIMag] = "16.5"

	r, err := ToRecord(s, "lc/x.dat")
	require.NoError(t, err)
	require.NoError(t, r.Validate())
	assert.Equal(t, "ogle", r.Origin)
	assert.Equal(t, "LMC_1", r.Identifier)
	assert.Equal(t, "OGLE 1", r.Name)
	assert.Equal(t, 18.0, *r.BMag)
	assert.Equal(t, 16.5, *r.IMag)
	assert.Nil(t, r.VMag)
	assert.Equal(t, "lc/x.dat", r.LCPath)

	back := r.ToStar()
	assert.True(t, back.Equal(s))

	_, err = ToRecord(&domain.Star{}, "")
	assert.ErrorIs(t, err, domain.ErrQueryInput)
}
