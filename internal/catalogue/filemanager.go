package catalogue

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"lightcurve-lab/internal/domain"
)

// NameFileManager is the registry name of the light-curve directory reader.
const NameFileManager = "FileManager"

// DefaultFileOrigin is the origin assigned to stars read from files.
const DefaultFileOrigin = "file"

// FileManager reads stars from light-curve text files. Each file becomes one
// star named after the file without its suffix.
type FileManager struct {
	paths  []string
	suffix string
	limit  int
	origin string
	class  string
	logger *zap.Logger
}

// FileManagerOptions configures a FileManager.
type FileManagerOptions struct {
	Paths      []string // one directory, or a list of files
	Suffix     string   // "" = dat
	FilesLimit int      // 0 = unlimited
	Origin     string   // "" = DefaultFileOrigin
	Class      string   // assigned to every star
	Logger     *zap.Logger
}

// NewFileManager creates a FileManager.
func NewFileManager(opts FileManagerOptions) (*FileManager, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("%w: file manager needs a path", domain.ErrQueryInput)
	}
	if opts.FilesLimit < 0 {
		return nil, fmt.Errorf("%w: negative files_limit", domain.ErrQueryInput)
	}
	if opts.Suffix == "" {
		opts.Suffix = "dat"
	}
	if opts.Origin == "" {
		opts.Origin = DefaultFileOrigin
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &FileManager{
		paths:  opts.Paths,
		suffix: strings.TrimPrefix(opts.Suffix, "."),
		limit:  opts.FilesLimit,
		origin: opts.Origin,
		class:  opts.Class,
		logger: opts.Logger,
	}, nil
}

func newFileManagerFromQuery(q Query, env Env) (Adapter, error) {
	if err := q.CheckKeys(NameFileManager, "path", "suffix", "files_limit", "db_ident", "star_class"); err != nil {
		return nil, err
	}
	paths, err := q.Strings("path")
	if err != nil {
		return nil, err
	}
	for i, p := range paths {
		paths[i] = resolve(env.BaseDir, p)
	}
	suffix, err := q.String("suffix", "dat")
	if err != nil {
		return nil, err
	}
	limit, err := q.Int("files_limit", 0)
	if err != nil {
		return nil, err
	}
	origin, err := q.String("db_ident", DefaultFileOrigin)
	if err != nil {
		return nil, err
	}
	class, err := q.String("star_class", "")
	if err != nil {
		return nil, err
	}
	return NewFileManager(FileManagerOptions{
		Paths:      paths,
		Suffix:     suffix,
		FilesLimit: limit,
		Origin:     origin,
		Class:      class,
		Logger:     env.logger(),
	})
}

// Files returns the light-curve files to read, sorted by name.
func (m *FileManager) Files() ([]string, error) {
	var files []string
	if len(m.paths) == 1 {
		info, err := os.Stat(m.paths[0])
		if err != nil {
			return nil, fmt.Errorf("light curve path: %w", err)
		}
		if info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(m.paths[0], "*."+m.suffix))
			if err != nil {
				return nil, err
			}
			files = matches
		} else {
			files = []string{m.paths[0]}
		}
	} else {
		files = append(files, m.paths...)
	}
	sort.Strings(files)
	if m.limit > 0 && len(files) > m.limit {
		files = files[:m.limit]
	}
	return files, nil
}

// Stars reads every file into a star with one light curve.
func (m *FileManager) Stars(ctx context.Context) ([]*domain.Star, error) {
	files, err := m.Files()
	if err != nil {
		return nil, err
	}
	stars := make([]*domain.Star, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		lc, err := ReadLightCurveFile(path, map[string]string{"origin": m.origin})
		if err != nil {
			return nil, err
		}
		s := domain.NewStar(m.origin, name, name)
		s.Class = m.class
		s.PutLightCurve(lc)
		stars = append(stars, s)
	}
	m.logger.Debug("light curve files read", zap.Int("files", len(files)), zap.String("origin", m.origin))
	return stars, nil
}

func resolve(base, path string) string {
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

var _ Adapter = (*FileManager)(nil)
