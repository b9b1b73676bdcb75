package domain

import "math"

// CorrelationMatrix is the single typed representation of pairwise Pearson
// coefficients. Symmetric, 1.0 on the diagonal, and only contains assets
// that had complete overlapping history - an asset with no data is absent,
// never defaulted to zero.
type CorrelationMatrix struct {
	coefficients map[string]map[string]float64
}

func NewCorrelationMatrix(symbols []string) *CorrelationMatrix {
	m := &CorrelationMatrix{
		coefficients: map[string]map[string]float64{},
	}
	for _, s := range symbols {
		m.coefficients[s] = map[string]float64{s: 1}
	}
	return m
}

// Set stores the coefficient in both directions.
func (m *CorrelationMatrix) Set(a, b string, coefficient float64) {
	m.coefficients[a][b] = coefficient
	m.coefficients[b][a] = coefficient
}

func (m *CorrelationMatrix) Coefficient(a, b string) (float64, bool) {
	row, ok := m.coefficients[a]
	if !ok {
		return 0, false
	}
	c, ok := row[b]
	return c, ok
}

func (m *CorrelationMatrix) Has(symbol string) bool {
	_, ok := m.coefficients[symbol]
	return ok
}

func (m *CorrelationMatrix) Symbols() []string {
	symbols := make([]string, 0, len(m.coefficients))
	for s := range m.coefficients {
		symbols = append(symbols, s)
	}
	return symbols
}

// ToMap renders the matrix as nested maps for serialization and prompt
// building. Mutating the result does not touch the matrix.
func (m *CorrelationMatrix) ToMap() map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	for a, row := range m.coefficients {
		out[a] = map[string]float64{}
		for b, c := range row {
			out[a][b] = c
		}
	}
	return out
}

// MeanAbsCorrelation averages |corr| between symbol and every other asset
// in others that the matrix covers. The second return is false when the
// symbol is missing from the matrix or has nothing to correlate against.
func (m *CorrelationMatrix) MeanAbsCorrelation(symbol string, others []string) (float64, bool) {
	if !m.Has(symbol) {
		return 0, false
	}
	sum := 0.0
	n := 0
	for _, other := range others {
		if other == symbol {
			continue
		}
		c, ok := m.Coefficient(symbol, other)
		if !ok {
			continue
		}
		sum += math.Abs(c)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
