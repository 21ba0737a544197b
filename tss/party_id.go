package tss

import (
	"fmt"
	"math/big"
	"sort"
)

type (
	// PartyID represents a participant in the protocol rounds.
	// The `Id` is intended to be a unique string representation of `Key` and
	// `Moniker` can be anything (even left blank). The Index is the party's
	// slot in the sorted set and is assigned by SortPartyIDs.
	PartyID struct {
		Id      string
		Moniker string
		Key     []byte
		Index   int
	}

	UnSortedPartyIDs []*PartyID
	SortedPartyIDs   []*PartyID
)

// NewPartyID constructs a new PartyID.
// `key` should remain consistent between runs for each party.
func NewPartyID(id string, moniker string, key *big.Int) *PartyID {
	return &PartyID{
		Id:      id,
		Moniker: moniker,
		Key:     key.Bytes(),
		Index:   -1, // not known until sorted
	}
}

func (pid *PartyID) KeyInt() *big.Int {
	return new(big.Int).SetBytes(pid.Key)
}

func (pid *PartyID) ValidateBasic() bool {
	return pid != nil && pid.Key != nil && 0 < len(pid.Key) && 0 <= pid.Index
}

func (pid *PartyID) String() string {
	return fmt.Sprintf("{%d,%s}", pid.Index, pid.Moniker)
}

// ----- //

// SortPartyIDs sorts a list of []*PartyID by their keys in ascending order
func SortPartyIDs(ids UnSortedPartyIDs) SortedPartyIDs {
	sorted := make(SortedPartyIDs, 0, len(ids))
	sorted = append(sorted, ids...)
	sort.Sort(sorted)
	// assign party indexes
	for i, id := range sorted {
		id.Index = i
	}
	return sorted
}

// GenerateTestPartyIDs generates a list of mock PartyIDs for tests
func GenerateTestPartyIDs(count int) SortedPartyIDs {
	ids := make(UnSortedPartyIDs, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, &PartyID{
			Id:      fmt.Sprintf("%d", i+1),
			Moniker: fmt.Sprintf("P[%d]", i+1),
			// this key makes tests deterministic
			Key:   big.NewInt(int64(i) + 1).Bytes(),
			Index: i,
		})
	}
	return SortPartyIDs(ids)
}

func (spids SortedPartyIDs) Keys() []*big.Int {
	ids := make([]*big.Int, spids.Len())
	for i, pid := range spids {
		ids[i] = pid.KeyInt()
	}
	return ids
}

func (spids SortedPartyIDs) FindByID(id string) *PartyID {
	for _, pid := range spids {
		if pid.Id == id {
			return pid
		}
	}
	return nil
}

func (spids SortedPartyIDs) FindByKey(key *big.Int) *PartyID {
	for _, pid := range spids {
		if pid.KeyInt().Cmp(key) == 0 {
			return pid
		}
	}
	return nil
}

// Sortable

func (spids SortedPartyIDs) Len() int {
	return len(spids)
}

func (spids SortedPartyIDs) Less(a, b int) bool {
	return spids[a].KeyInt().Cmp(spids[b].KeyInt()) <= 0
}

func (spids SortedPartyIDs) Swap(a, b int) {
	spids[a], spids[b] = spids[b], spids[a]
}
