package pool

// ReserveSnapshot is the pool state at one observation instant. Immutable:
// it is never updated in place, only replaced by a newer fetch.
type ReserveSnapshot struct {
	ReserveA   uint64 `json:"reserve_a"`
	ReserveB   uint64 `json:"reserve_b"`
	TotalSwaps uint64 `json:"total_swaps"`
}

// Uninitialized reports whether the pool has never been seeded. A legitimately
// empty pool is a valid zero-valued snapshot, not an error; the initialize
// entry point is the only valid next action against it.
func (s ReserveSnapshot) Uninitialized() bool {
	return s.ReserveA == 0 && s.ReserveB == 0 && s.TotalSwaps == 0
}

// Reserves returns (reserveIn, reserveOut) for a swap that sells side A
// when aToB is true, side B otherwise.
func (s ReserveSnapshot) Reserves(aToB bool) (reserveIn, reserveOut uint64) {
	if aToB {
		return s.ReserveA, s.ReserveB
	}
	return s.ReserveB, s.ReserveA
}
