package hits

import "math"

// Table maps page identifiers to scores. Lookups of pages that are not in
// the table read as zero; iteration follows insertion order, which is the
// order ties are broken in when ranking
type Table struct {
	keys   []string
	scores map[string]float64
}

func NewTable(capacity int) *Table {
	return &Table{
		keys:   make([]string, 0, capacity),
		scores: make(map[string]float64, capacity),
	}
}

// Table with every page set to score, in the given order
func Uniform(pages []string, score float64) *Table {
	t := NewTable(len(pages))
	for _, page := range pages {
		t.Set(page, score)
	}
	return t
}

func (t *Table) Set(page string, score float64) {
	if _, ok := t.scores[page]; !ok {
		t.keys = append(t.keys, page)
	}
	t.scores[page] = score
}

// Score of page, zero when page is not in the table
func (t *Table) Get(page string) float64 {
	return t.scores[page]
}

func (t *Table) Has(page string) bool {
	_, ok := t.scores[page]
	return ok
}

func (t *Table) Len() int {
	return len(t.keys)
}

// Pages in insertion order
func (t *Table) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

func (t *Table) Sum() float64 {
	total := 0.0
	for _, page := range t.keys {
		total += t.scores[page]
	}
	return total
}

// Euclidean norm of the scores
func (t *Table) Norm() float64 {
	squares := 0.0
	for _, page := range t.keys {
		squares += t.scores[page] * t.scores[page]
	}
	return math.Sqrt(squares)
}

// Scale the scores to unit Euclidean norm. When the norm is zero the scores
// are left untouched and false is returned
func (t *Table) Normalize() bool {
	norm := t.Norm()
	if norm == 0 {
		return false
	}
	for _, page := range t.keys {
		t.scores[page] /= norm
	}
	return true
}

// Overwrite the scores of pages already in t with the ones in next.
// Pages of next that t does not know are ignored, so the key set of t never
// changes
func (t *Table) Merge(next *Table) {
	for _, page := range next.keys {
		if _, ok := t.scores[page]; ok {
			t.scores[page] = next.scores[page]
		}
	}
}
