package analysis

import (
	"fmt"
	"math"

	"lightcurve-lab/internal/domain"
)

// Supported alphabet sizes.
const (
	MinAlphabetSize = 3
	MaxAlphabetSize = 20
)

// NormalizeEps is the deviation under which a series normalises to zeros.
const NormalizeEps = 1e-6

// saxBreakpoints holds equal-probability N(0,1) breakpoints per alphabet size.
var saxBreakpoints = map[int][]float64{
	3:  {-0.43, 0.43},
	4:  {-0.67, 0, 0.67},
	5:  {-0.84, -0.25, 0.25, 0.84},
	6:  {-0.97, -0.43, 0, 0.43, 0.97},
	7:  {-1.07, -0.57, -0.18, 0.18, 0.57, 1.07},
	8:  {-1.15, -0.67, -0.32, 0, 0.32, 0.67, 1.15},
	9:  {-1.22, -0.76, -0.43, -0.14, 0.14, 0.43, 0.76, 1.22},
	10: {-1.28, -0.84, -0.52, -0.25, 0, 0.25, 0.52, 0.84, 1.28},
	11: {-1.34, -0.91, -0.6, -0.35, -0.11, 0.11, 0.35, 0.6, 0.91, 1.34},
	12: {-1.38, -0.97, -0.67, -0.43, -0.21, 0, 0.21, 0.43, 0.67, 0.97, 1.38},
	13: {-1.43, -1.02, -0.74, -0.5, -0.29, -0.1, 0.1, 0.29, 0.5, 0.74, 1.02, 1.43},
	14: {-1.47, -1.07, -0.79, -0.57, -0.37, -0.18, 0, 0.18, 0.37, 0.57, 0.79, 1.07, 1.47},
	15: {-1.5, -1.11, -0.84, -0.62, -0.43, -0.25, -0.08, 0.08, 0.25, 0.43, 0.62, 0.84, 1.11, 1.5},
	16: {-1.53, -1.15, -0.89, -0.67, -0.49, -0.32, -0.16, 0, 0.16, 0.32, 0.49, 0.67, 0.89, 1.15, 1.53},
	17: {-1.56, -1.19, -0.93, -0.72, -0.54, -0.38, -0.22, -0.07, 0.07, 0.22, 0.38, 0.54, 0.72, 0.93, 1.19, 1.56},
	18: {-1.59, -1.22, -0.97, -0.76, -0.59, -0.43, -0.28, -0.14, 0, 0.14, 0.28, 0.43, 0.59, 0.76, 0.97, 1.22, 1.59},
	19: {-1.62, -1.25, -1, -0.8, -0.63, -0.48, -0.34, -0.2, -0.07, 0.07, 0.2, 0.34, 0.48, 0.63, 0.8, 1, 1.25, 1.62},
	20: {-1.64, -1.28, -1.04, -0.84, -0.67, -0.52, -0.39, -0.25, -0.13, 0, 0.13, 0.25, 0.39, 0.52, 0.67, 0.84, 1.04, 1.28, 1.64},
}

// Word is a SAX word together with the length of the series it encodes.
type Word struct {
	Letters   string
	SourceLen int
}

// Scale returns sqrt(SourceLen / len(Letters)), the factor that makes
// distances of words built from series of different lengths comparable.
func (w Word) Scale() float64 {
	if len(w.Letters) == 0 {
		return 1
	}
	return math.Sqrt(float64(w.SourceLen) / float64(len(w.Letters)))
}

// SAX translates series into words over an alphabet of AlphabetSize letters.
type SAX struct {
	alphabetSize int
	beta         []float64
	letterDist   [][]float64
}

// NewSAX builds the breakpoint and letter-distance tables for alphabetSize.
// Returns ErrQueryInput for sizes outside [3, 20].
func NewSAX(alphabetSize int) (*SAX, error) {
	beta, ok := saxBreakpoints[alphabetSize]
	if !ok {
		return nil, fmt.Errorf("%w: alphabet size %d not supported (%d..%d)",
			domain.ErrQueryInput, alphabetSize, MinAlphabetSize, MaxAlphabetSize)
	}

	dist := make([][]float64, alphabetSize)
	for i := range dist {
		dist[i] = make([]float64, alphabetSize)
		for j := range dist[i] {
			if abs(i-j) <= 1 {
				continue
			}
			dist[i][j] = beta[max(i, j)-1] - beta[min(i, j)]
		}
	}
	return &SAX{alphabetSize: alphabetSize, beta: beta, letterDist: dist}, nil
}

// AlphabetSize returns the number of letters.
func (s *SAX) AlphabetSize() int {
	return s.alphabetSize
}

// Word normalises x, reduces it to wordSize frames and alphabetises the frames.
func (s *SAX) Word(x []float64, wordSize int) Word {
	paa := ToPAA(Normalize(x, NormalizeEps), wordSize)
	return Word{Letters: s.Alphabetize(paa), SourceLen: len(x)}
}

// Alphabetize maps each value to the first letter whose breakpoint exceeds it.
func (s *SAX) Alphabetize(values []float64) string {
	letters := make([]byte, len(values))
	for i, v := range values {
		letter := len(s.beta)
		for j, b := range s.beta {
			if v < b {
				letter = j
				break
			}
		}
		letters[i] = byte('a' + letter)
	}
	return string(letters)
}

// LetterDistance returns the distance between two letters: 0 for equal or
// adjacent letters, else beta[max-1] - beta[min].
func (s *SAX) LetterDistance(a, b byte) float64 {
	return s.letterDist[int(a-'a')][int(b-'a')]
}

// Compare returns scale * sqrt(sum of squared letter distances) for two
// words of equal length.
func (s *SAX) Compare(a, b string, scale float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: words differ in length (%d and %d)", domain.ErrQueryInput, len(a), len(b))
	}
	var sum float64
	for i := 0; i < len(a); i++ {
		if !s.valid(a[i]) || !s.valid(b[i]) {
			return 0, fmt.Errorf("%w: letter outside alphabet of size %d", domain.ErrQueryInput, s.alphabetSize)
		}
		d := s.LetterDistance(a[i], b[i])
		sum += d * d
	}
	return scale * math.Sqrt(sum), nil
}

// Dissimilarity compares the shorter word against the longer one. With slide
// every alignment of the shorter word inside the longer is tried and the
// minimum returned; otherwise only the leading alignment is used. Distances
// are scaled by the template word.
func (s *SAX) Dissimilarity(inspected, template Word, slide bool) (float64, error) {
	if inspected.Letters == "" || template.Letters == "" {
		return 0, fmt.Errorf("%w: there are no words to compare", domain.ErrQueryInput)
	}
	short, long := inspected.Letters, template.Letters
	if len(template.Letters) < len(inspected.Letters) {
		short, long = template.Letters, inspected.Letters
	}

	scale := template.Scale()
	best := math.Inf(1)
	for shift := 0; shift+len(short) <= len(long); shift++ {
		score, err := s.Compare(long[shift:shift+len(short)], short, scale)
		if err != nil {
			return 0, err
		}
		best = math.Min(best, score)
		if !slide {
			break
		}
	}
	return best, nil
}

func (s *SAX) valid(c byte) bool {
	return c >= 'a' && int(c-'a') < s.alphabetSize
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
