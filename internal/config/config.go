// Package config decodes YAML job descriptions for the lcc binary.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"lightcurve-lab/internal/decider"
	"lightcurve-lab/internal/descriptor"
	"lightcurve-lab/internal/domain"
)

// Defaults applied by Validate.
const (
	DefaultSplitRatio = 0.75
	DefaultOpt        = "max"
	DefaultScore      = domain.KeyPrecision
	DefaultDelimiter  = "\t"
	DefaultPassMethod = "all"

	DefaultROCDataFile = "roc_curve.dat"
	DefaultStatsFile   = "stats.dat"
	DefaultPlotFile    = "roc_curve.png"
	DefaultReportFile  = "TUNING_REPORT.md"
	DefaultResultFile  = "filtered.dat"
)

// TemplatesKey is the descriptor parameter that may name a template set.
const TemplatesKey = "comp_stars"

// Source selects stars from a catalogue adapter.
type Source struct {
	Adapter string         `yaml:"adapter"`
	Query   map[string]any `yaml:"query"`
}

// Output configures artifact files, relative to Dir.
type Output struct {
	Dir       string `yaml:"dir"`
	Delimiter string `yaml:"delimiter"`
	ROCData   string `yaml:"roc_data"`
	Stats     string `yaml:"stats"`
	Plot      string `yaml:"plot"`
	Report    string `yaml:"report"`
	Result    string `yaml:"result"` // filter jobs only
}

// Shape is the descriptor and decider composition of a stars filter.
type Shape struct {
	Descriptors  []string            `yaml:"descriptors"`
	Deciders     []string            `yaml:"deciders"`
	StaticParams map[string]any      `yaml:"static_params"`
	Templates    map[string][]Source `yaml:"templates"` // template set name -> sources
	ReducedDim   int                 `yaml:"reduced_dim"`
}

// TuneJob describes a parameter search.
type TuneJob struct {
	Name     string   `yaml:"name"`
	Searched []Source `yaml:"searched"`
	Others   []Source `yaml:"others"`
	Shape    `yaml:",inline"`

	TunedParams []domain.Params             `yaml:"tuned_params"`
	Grid        map[string]map[string][]any `yaml:"grid"`

	SplitRatio float64 `yaml:"split_ratio"`
	Seed       int64   `yaml:"seed"`
	Workers    int     `yaml:"workers"`
	ROCStep    float64 `yaml:"roc_step"`
	Score      string  `yaml:"score"`
	Opt        string  `yaml:"opt"`

	Output Output `yaml:"output"`

	baseDir string
}

// FilterJob trains one stars filter and applies it to a batch of stars.
type FilterJob struct {
	Name     string   `yaml:"name"`
	Searched []Source `yaml:"searched"`
	Others   []Source `yaml:"others"`
	Shape    `yaml:",inline"`

	Stars      []Source `yaml:"stars"`
	PassMethod string   `yaml:"pass_method"`

	Output Output `yaml:"output"`

	baseDir string
}

// BaseDir is the directory of the job file; relative paths resolve against it.
func (j *TuneJob) BaseDir() string { return j.baseDir }

// BaseDir is the directory of the job file; relative paths resolve against it.
func (j *FilterJob) BaseDir() string { return j.baseDir }

// LoadTuneJob reads and validates a tune job file.
func LoadTuneJob(path string) (*TuneJob, error) {
	var job TuneJob
	if err := decodeFile(path, &job); err != nil {
		return nil, err
	}
	job.baseDir = filepath.Dir(path)
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	job.Output.Dir = resolve(job.baseDir, job.Output.Dir)
	return &job, nil
}

// LoadFilterJob reads and validates a filter job file.
func LoadFilterJob(path string) (*FilterJob, error) {
	var job FilterJob
	if err := decodeFile(path, &job); err != nil {
		return nil, err
	}
	job.baseDir = filepath.Dir(path)
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	job.Output.Dir = resolve(job.baseDir, job.Output.Dir)
	return &job, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read job file: %w", err)
	}
	return Decode(bytes.NewReader(data), v)
}

// Decode strictly decodes a YAML document into v: unknown fields are errors.
func Decode(r io.Reader, v any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode job: %v", domain.ErrQueryInput, err)
	}
	return nil
}

// Validate fills defaults and checks a tune job.
func (j *TuneJob) Validate() error {
	if err := validateSamples(j.Searched, j.Others); err != nil {
		return err
	}
	if err := j.Shape.validate(); err != nil {
		return err
	}
	for i, t := range j.TunedParams {
		if err := j.Shape.checkComponents(t.Components(), fmt.Sprintf("tuned_params[%d]", i)); err != nil {
			return err
		}
	}
	gridComps := make([]string, 0, len(j.Grid))
	for comp := range j.Grid {
		gridComps = append(gridComps, comp)
	}
	if err := j.Shape.checkComponents(gridComps, "grid"); err != nil {
		return err
	}

	if j.SplitRatio == 0 {
		j.SplitRatio = DefaultSplitRatio
	}
	if j.SplitRatio <= 0 || j.SplitRatio >= 1 {
		return fmt.Errorf("%w: split_ratio %v must lie in (0, 1)", domain.ErrQueryInput, j.SplitRatio)
	}
	if j.Workers < 0 {
		return fmt.Errorf("%w: negative workers", domain.ErrQueryInput)
	}
	if j.ROCStep < 0 || j.ROCStep > 1 {
		return fmt.Errorf("%w: roc_step %v must lie in (0, 1]", domain.ErrQueryInput, j.ROCStep)
	}
	if j.Score == "" {
		j.Score = DefaultScore
	}
	if j.Opt == "" {
		j.Opt = DefaultOpt
	}
	if j.Opt != "max" && j.Opt != "min" {
		return fmt.Errorf("%w: opt %q (expected max or min)", domain.ErrInvalidOption, j.Opt)
	}
	return j.Output.defaults(false)
}

// Validate fills defaults and checks a filter job.
func (j *FilterJob) Validate() error {
	if err := validateSamples(j.Searched, j.Others); err != nil {
		return err
	}
	if len(j.Stars) == 0 {
		return fmt.Errorf("%w: no stars to filter", domain.ErrQueryInput)
	}
	if err := validateSources(j.Stars, "stars"); err != nil {
		return err
	}
	if err := j.Shape.validate(); err != nil {
		return err
	}
	if j.PassMethod == "" {
		j.PassMethod = DefaultPassMethod
	}
	switch j.PassMethod {
	case "all", "mean", "one":
	default:
		return fmt.Errorf("%w: pass_method %q", domain.ErrQueryInput, j.PassMethod)
	}
	return j.Output.defaults(true)
}

// Rune returns the delimiter as a rune.
func (o Output) Rune() rune {
	r, _ := utf8.DecodeRuneInString(o.Delimiter)
	return r
}

// Path joins name with the output directory.
func (o Output) Path(name string) string {
	return filepath.Join(o.Dir, name)
}

func (o *Output) defaults(filter bool) error {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Delimiter == "" {
		o.Delimiter = DefaultDelimiter
	}
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter %q must be a single character", domain.ErrQueryInput, o.Delimiter)
	}
	if filter {
		if o.Result == "" {
			o.Result = DefaultResultFile
		}
		return nil
	}
	if o.ROCData == "" {
		o.ROCData = DefaultROCDataFile
	}
	if o.Stats == "" {
		o.Stats = DefaultStatsFile
	}
	if o.Plot == "" {
		o.Plot = DefaultPlotFile
	}
	if o.Report == "" {
		o.Report = DefaultReportFile
	}
	return nil
}

func validateSamples(searched, others []Source) error {
	if len(searched) == 0 || len(others) == 0 {
		return fmt.Errorf("%w: searched and others need at least one source each", domain.ErrQueryInput)
	}
	if err := validateSources(searched, "searched"); err != nil {
		return err
	}
	return validateSources(others, "others")
}

func validateSources(sources []Source, field string) error {
	for i, s := range sources {
		if s.Adapter == "" {
			return fmt.Errorf("%w: %s[%d] has no adapter", domain.ErrQueryInput, field, i)
		}
	}
	return nil
}

func (s *Shape) validate() error {
	if len(s.Descriptors) == 0 || len(s.Deciders) == 0 {
		return fmt.Errorf("%w: at least one descriptor and one decider are required", domain.ErrQueryInput)
	}
	for _, name := range s.Descriptors {
		if !descriptor.IsDescriptor(name) {
			return fmt.Errorf("%w: descriptor %q", domain.ErrNotFound, name)
		}
	}
	for _, name := range s.Deciders {
		if !decider.IsDecider(name) {
			return fmt.Errorf("%w: decider %q", domain.ErrNotFound, name)
		}
	}
	if s.ReducedDim < 0 {
		return fmt.Errorf("%w: negative reduced_dim", domain.ErrQueryInput)
	}
	comps := make([]string, 0, len(s.StaticParams))
	for comp := range s.StaticParams {
		comps = append(comps, comp)
	}
	if err := s.checkComponents(comps, "static_params"); err != nil {
		return err
	}
	for name, sources := range s.Templates {
		if len(sources) == 0 {
			return fmt.Errorf("%w: template set %q has no sources", domain.ErrQueryInput, name)
		}
		if err := validateSources(sources, "templates."+name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shape) checkComponents(comps []string, field string) error {
	for _, comp := range comps {
		if !contains(s.Descriptors, comp) && !contains(s.Deciders, comp) {
			return fmt.Errorf("%w: %s names unused component %q", domain.ErrQueryInput, field, comp)
		}
	}
	return nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
