package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Entropy computes approximate, sample, fuzzy, and permutation entropy of
// the signal or PPI series, plus permutation entropy of the first- and
// second-order differenced series and their ratio. Embedding dimension and
// tolerance come from Params (m=2, r=0.15*SD by default).
type Entropy struct {
	Series SeriesKind
}

func (m Entropy) Name() string { return "ent_" + m.Series.prefix() }

var entropySuffixes = []string{
	"apen", "sampen", "fuzzyen", "permen",
	"permen_d1", "permen_d2", "permen_ratio",
}

func (m Entropy) Columns() []string {
	cols := make([]string, len(entropySuffixes))
	for i, s := range entropySuffixes {
		cols[i] = fmt.Sprintf("ent_%s_%s", m.Series.prefix(), s)
	}
	return cols
}

func (m Entropy) Compute(c *Context) ([]float64, error) {
	x := m.Series.pick(c)
	dim := c.Params.EntropyDim
	if dim <= 0 {
		dim = DefaultParams().EntropyDim
	}
	rf := c.Params.EntropyRFactor
	if rf <= 0 {
		rf = DefaultParams().EntropyRFactor
	}
	if len(x) < dim+3 {
		return nanRow(len(entropySuffixes)), nil
	}
	r := rf * stat.StdDev(x, nil)

	d1 := diff(x)
	d2 := diff(d1)
	pd1 := permutationEntropy(d1, dim)
	pd2 := permutationEntropy(d2, dim)

	row := []float64{
		approximateEntropy(x, dim, r),
		sampleEntropy(x, dim, r),
		fuzzyEntropy(x, dim, r),
		permutationEntropy(x, dim),
		pd1,
		pd2,
		ratioOrNaN(pd1, pd2),
	}
	return row, nil
}

// chebyshevMatch reports whether two m-length templates starting at i and j
// stay within tolerance r under the maximum norm.
func chebyshevMatch(x []float64, i, j, m int, r float64) bool {
	for k := 0; k < m; k++ {
		if math.Abs(x[i+k]-x[j+k]) > r {
			return false
		}
	}
	return true
}

// approximateEntropy is Pincus' ApEn: phi(m) - phi(m+1) with self-matches
// included.
func approximateEntropy(x []float64, m int, r float64) float64 {
	if r <= 0 || len(x) < m+2 {
		return math.NaN()
	}
	phi := func(m int) float64 {
		n := len(x) - m + 1
		sum := 0.0
		for i := 0; i < n; i++ {
			count := 0
			for j := 0; j < n; j++ {
				if chebyshevMatch(x, i, j, m, r) {
					count++
				}
			}
			sum += math.Log(float64(count) / float64(n))
		}
		return sum / float64(n)
	}
	return phi(m) - phi(m+1)
}

// sampleEntropy is SampEn: -log(A/B) over template matches excluding
// self-matches. NaN when no templates match at either length.
func sampleEntropy(x []float64, m int, r float64) float64 {
	if r <= 0 || len(x) < m+2 {
		return math.NaN()
	}
	n := len(x) - m
	var b, a float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if chebyshevMatch(x, i, j, m, r) {
				b++
				if math.Abs(x[i+m]-x[j+m]) <= r {
					a++
				}
			}
		}
	}
	if a == 0 || b == 0 {
		return math.NaN()
	}
	return -math.Log(a / b)
}

// fuzzyEntropy replaces the hard tolerance with an exponential membership
// over baseline-removed templates.
func fuzzyEntropy(x []float64, m int, r float64) float64 {
	if r <= 0 || len(x) < m+2 {
		return math.NaN()
	}
	similarity := func(m int) float64 {
		n := len(x) - m
		if n < 2 {
			return math.NaN()
		}
		// Templates with their own mean removed.
		tmpl := make([][]float64, n)
		for i := 0; i < n; i++ {
			t := make([]float64, m)
			mean := 0.0
			for k := 0; k < m; k++ {
				mean += x[i+k]
			}
			mean /= float64(m)
			for k := 0; k < m; k++ {
				t[k] = x[i+k] - mean
			}
			tmpl[i] = t
		}
		sum := 0.0
		pairs := 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d := 0.0
				for k := 0; k < m; k++ {
					if a := math.Abs(tmpl[i][k] - tmpl[j][k]); a > d {
						d = a
					}
				}
				sum += math.Exp(-(d * d) / (r * r))
				pairs++
			}
		}
		return sum / float64(pairs)
	}
	phiM := similarity(m)
	phiM1 := similarity(m + 1)
	if phiM <= 0 || phiM1 <= 0 || math.IsNaN(phiM) || math.IsNaN(phiM1) {
		return math.NaN()
	}
	return math.Log(phiM) - math.Log(phiM1)
}

// permutationEntropy is the normalized Shannon entropy of ordinal patterns
// of the given embedding dimension.
func permutationEntropy(x []float64, m int) float64 {
	if m < 2 || len(x) < m+1 {
		return math.NaN()
	}
	counts := make(map[string]int)
	total := 0
	perm := make([]int, m)
	for i := 0; i+m <= len(x); i++ {
		for k := range perm {
			perm[k] = k
		}
		// Insertion-sort ranks; ties keep original order.
		for a := 1; a < m; a++ {
			for b := a; b > 0 && x[i+perm[b]] < x[i+perm[b-1]]; b-- {
				perm[b], perm[b-1] = perm[b-1], perm[b]
			}
		}
		key := ""
		for _, p := range perm {
			key += string(rune('0' + p))
		}
		counts[key]++
		total++
	}
	if total == 0 {
		return math.NaN()
	}
	h := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	// Normalize by the log of the pattern count.
	norm := math.Log(factorial(m))
	if norm == 0 {
		return math.NaN()
	}
	return h / norm
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
