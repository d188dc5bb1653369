package sample

import (
	"errors"
	"math"

	"github.com/xtding233/bitgen/internal/bitgen"
)

var (
	ErrEmptyPool      = errors.New("no entries to weight")
	ErrWeight         = errors.New("entry weight must be > 0")
	ErrWeightOverflow = errors.New("total weight overflows uint64")
	ErrDrawCount      = errors.New("must draw at least 1 entry")
	ErrNotWeighted    = errors.New("pool cumulative weights are not built")
)

// WeightedEntry is one candidate with its weight and running cumulative.
type WeightedEntry struct {
	Key        string
	Weight     uint64
	Cumulative uint64 // running total up through this entry
}

// BuildWeighted fills the Cumulative field of entries in place. The total
// weight must fit in a uint64.
func BuildWeighted(entries []WeightedEntry) ([]WeightedEntry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPool
	}
	var total uint64
	for i := range entries {
		if entries[i].Weight == 0 {
			return nil, ErrWeight
		}
		if total > math.MaxUint64-entries[i].Weight {
			return nil, ErrWeightOverflow
		}
		total += entries[i].Weight
		entries[i].Cumulative = total
	}
	return entries, nil
}

// WeightedWithoutReplacement picks k distinct keys from a built pool. Each
// pick is proportional to the remaining weights and removes the chosen entry.
// It returns fewer than k keys when the pool runs out. The pool is not
// modified.
func WeightedWithoutReplacement(pool []WeightedEntry, k int, g bitgen.BitGenerator) ([]string, error) {
	if k <= 0 {
		return nil, ErrDrawCount
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	if pool[len(pool)-1].Cumulative == 0 {
		return nil, ErrNotWeighted
	}

	tmp := make([]WeightedEntry, len(pool))
	copy(tmp, pool)

	picked := make([]string, 0, min(k, len(pool)))
	for len(picked) < k && len(tmp) > 0 {
		total := tmp[len(tmp)-1].Cumulative
		r := Uint64n(total, g)

		pick := 0
		for idx := range tmp {
			if r < tmp[idx].Cumulative {
				pick = idx
				break
			}
		}
		picked = append(picked, tmp[pick].Key)

		removed := tmp[pick].Weight
		tmp = append(tmp[:pick], tmp[pick+1:]...)
		for j := pick; j < len(tmp); j++ {
			tmp[j].Cumulative -= removed
		}
	}
	return picked, nil
}
