// pkg/catalog/statistics.go
package catalog

import (
	"github.com/pingcap/errors"

	"shareable/pkg/types"
)

// IndexStatistics describes the leading column of an index
type IndexStatistics struct {
	IndexName     string      // Name of the index
	RowCount      int64       // Number of indexed rows
	DistinctCount int64       // Distinct leading values, not including NULL
	NullCount     int64       // Rows whose leading value is NULL
	MinValue      types.Value // Smallest non-NULL leading value
	MaxValue      types.Value // Largest non-NULL leading value
}

// Statistics reads the statistics of an index off its top level. Keys
// are ordered with NULL first, so the NULL rows, if any, sit under the
// first entry.
func (c *Catalog) Statistics(indexName string) (*IndexStatistics, error) {
	ix, ok := c.indexes.Lookup(indexName)
	if !ok {
		return nil, errors.Annotatef(ErrIndexNotFound, "index %s", indexName)
	}

	top := ix.tree.Top().Dict()
	stats := &IndexStatistics{
		IndexName:     indexName,
		RowCount:      int64(ix.tree.Count()),
		DistinctCount: int64(top.Count()),
	}
	first := top.First()
	if first == nil {
		return stats, nil
	}
	if first.Key().IsNull() {
		stats.NullCount = int64(len(ix.tree.Rows([]types.Value{first.Key()})))
		stats.DistinctCount--
		first = first.Next()
	}
	if first == nil {
		return stats, nil
	}
	stats.MinValue = first.Key()
	for b := first; b != nil; b = b.Next() {
		stats.MaxValue = b.Key()
	}
	return stats, nil
}

// EqualitySelectivity returns the estimated selectivity for an equality predicate
// Based on the assumption of uniform distribution among distinct values
func (s *IndexStatistics) EqualitySelectivity() float64 {
	if s.DistinctCount <= 0 {
		return 0.01 // Default selectivity if no statistics
	}
	return 1.0 / float64(s.DistinctCount)
}

// NullFraction returns the fraction of NULL leading values
func (s *IndexStatistics) NullFraction() float64 {
	if s.RowCount <= 0 {
		return 0.0
	}
	return float64(s.NullCount) / float64(s.RowCount)
}
