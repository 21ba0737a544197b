package tss

import (
	"fmt"
)

// HoleVec is a length-N sequence with one slot permanently reserved: the
// owner's own index. Every other slot is filled exactly once. Rounds receive
// a full HoleVec of verified payloads at finalization.
type HoleVec struct {
	items  []interface{}
	hole   int
	filled []bool
}

func NewHoleVec(length, hole int) *HoleVec {
	if hole < 0 || length <= hole {
		panic(fmt.Errorf("NewHoleVec: hole index %d out of range for length %d", hole, length))
	}
	return &HoleVec{
		items:  make([]interface{}, length),
		hole:   hole,
		filled: make([]bool, length),
	}
}

func (v *HoleVec) Len() int {
	return len(v.items)
}

func (v *HoleVec) Hole() int {
	return v.hole
}

// Put stores the payload for the given slot; it refuses the reserved slot,
// out-of-range indices and double fills.
func (v *HoleVec) Put(idx int, item interface{}) error {
	if idx < 0 || len(v.items) <= idx {
		return fmt.Errorf("holevec: index %d out of range", idx)
	}
	if idx == v.hole {
		return fmt.Errorf("holevec: index %d is the reserved slot", idx)
	}
	if v.filled[idx] {
		return fmt.Errorf("holevec: slot %d already filled", idx)
	}
	v.items[idx] = item
	v.filled[idx] = true
	return nil
}

func (v *HoleVec) Get(idx int) (interface{}, bool) {
	if idx < 0 || len(v.items) <= idx || idx == v.hole {
		return nil, false
	}
	return v.items[idx], v.filled[idx]
}

func (v *HoleVec) Has(idx int) bool {
	_, ok := v.Get(idx)
	return ok
}

// IsFull is true iff every non-reserved slot is filled.
func (v *HoleVec) IsFull() bool {
	for i, ok := range v.filled {
		if i == v.hole {
			continue
		}
		if !ok {
			return false
		}
	}
	return true
}

// Missing lists the indices of the slots still awaiting a payload.
func (v *HoleVec) Missing() []int {
	missing := make([]int, 0, len(v.items))
	for i, ok := range v.filled {
		if i == v.hole || ok {
			continue
		}
		missing = append(missing, i)
	}
	return missing
}
