package correlation

// Matrix is a square Pearson correlation matrix over an ordered symbol
// list. The diagonal is forced to 1.0, the matrix is symmetric and all
// entries lie in [-1, 1]. Symbols without enough history (or stablecoins,
// which are excluded from estimation) keep their row and column with 0
// off-diagonal entries so the matrix stays index-aligned with Symbols.
type Matrix struct {
	Symbols              []string    `json:"symbols"`
	Values               [][]float64 `json:"values"`
	StronglyCorrelated   []Pair      `json:"strongly_correlated"`
	NegativelyCorrelated []Pair      `json:"negatively_correlated"`
}

// Pair is an unordered symbol pair with its correlation coefficient.
type Pair struct {
	Symbol1     string  `json:"symbol1"`
	Symbol2     string  `json:"symbol2"`
	Correlation float64 `json:"correlation"`
}

// At returns the correlation between the symbols at positions i and j.
func (m Matrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// LookupMap converts the classified pairs to a map keyed "SYMBOL1:SYMBOL2",
// storing both orderings for symmetric O(1) access.
func (m Matrix) LookupMap() map[string]float64 {
	out := make(map[string]float64, (len(m.StronglyCorrelated)+len(m.NegativelyCorrelated))*2)
	for _, p := range append(append([]Pair{}, m.StronglyCorrelated...), m.NegativelyCorrelated...) {
		out[p.Symbol1+":"+p.Symbol2] = p.Correlation
		out[p.Symbol2+":"+p.Symbol1] = p.Correlation
	}
	return out
}
