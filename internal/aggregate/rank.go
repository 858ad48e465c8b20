package aggregate

import (
	"fmt"
	"sort"
)

// Rank fields accepted by Rank
const (
	RankByTotal         = "total"
	RankByExpected      = "expected"
	RankByGap           = "gap"
	RankByGapRatio      = "gap_ratio"
	RankByEnrollmentPct = "enrollment_percentage"
)

// Rank returns a new slice of at most n results ordered on the given field,
// descending unless ascending is set. Ties are broken by group key ascending
// so the projection is deterministic. The input is never mutated and nothing
// is re-summed; unset or undefined values always sort after set ones.
func Rank(results []Result, byField string, n int, ascending bool) ([]Result, error) {
	value, err := fieldAccessor(byField)
	if err != nil {
		return nil, err
	}

	ranked := make([]Result, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, oki := value(ranked[i])
		vj, okj := value(ranked[j])
		if oki != okj {
			return oki
		}
		if oki && vi != vj {
			if ascending {
				return vi < vj
			}
			return vi > vj
		}
		return ranked[i].GroupKey < ranked[j].GroupKey
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// fieldAccessor resolves a rank field name to a value extractor. The second
// return reports whether the value is set and comparable for that result.
func fieldAccessor(byField string) (func(Result) (float64, bool), error) {
	switch byField {
	case RankByTotal:
		return func(r Result) (float64, bool) { return float64(r.Total), true }, nil
	case RankByExpected:
		return optAccessor(func(r Result) OptFloat { return r.Expected }), nil
	case RankByGap:
		return optAccessor(func(r Result) OptFloat { return r.Gap }), nil
	case RankByGapRatio:
		return optAccessor(func(r Result) OptFloat { return r.GapRatio }), nil
	case RankByEnrollmentPct:
		return optAccessor(func(r Result) OptFloat { return r.EnrollmentPct }), nil
	default:
		return nil, fmt.Errorf("unknown rank field %q", byField)
	}
}

func optAccessor(get func(Result) OptFloat) func(Result) (float64, bool) {
	return func(r Result) (float64, bool) {
		v := get(r)
		if !v.Valid || v.IsUndefined() {
			return 0, false
		}
		return v.Value, true
	}
}
