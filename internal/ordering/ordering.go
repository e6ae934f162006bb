// Package ordering implements the position arithmetic that keeps sibling
// entities (tasks within a list, lists within a board) at dense zero-based
// positions across inserts, deletes, and moves.
//
// The package is pure: it resolves requested moves into clamped targets and
// shift ranges, while the store layer applies the resulting range updates
// inside a single transaction so the density invariant holds after every
// commit.
package ordering

// ClampTarget clamps a requested position for an entity already present in
// a scope of the given size to the valid range [0, count-1]. Stale
// client-side indices are tolerated by clamping, never rejected.
func ClampTarget(target, count int) int {
	if count <= 0 {
		return 0
	}
	if target < 0 {
		return 0
	}
	if target > count-1 {
		return count - 1
	}
	return target
}

// ClampInsert clamps a requested position for an entity being inserted into
// a scope of the given size to the valid range [0, count]. The upper bound
// is inclusive of count because the entity is not yet among the siblings.
func ClampInsert(target, count int) int {
	if target < 0 {
		return 0
	}
	if target > count {
		return count
	}
	return target
}

// Reposition describes the sibling shift required to move an entity from
// its current position to a new one within the same scope. Siblings with
// positions in [Lo, Hi] must have Delta added to their position, after
// which the entity itself is placed at Target.
type Reposition struct {
	Target int
	Lo     int
	Hi     int
	Delta  int
	// NoOp is true when the resolved target equals the current position.
	// A no-op move must skip the transaction, the broadcast, and the
	// activity record entirely.
	NoOp bool
}

// ResolveReposition computes the shift needed to move an entity at current
// to the requested target within a scope of count siblings. The target is
// clamped to [0, count-1] first.
func ResolveReposition(current, target, count int) Reposition {
	clamped := ClampTarget(target, count)
	if clamped == current {
		return Reposition{Target: current, NoOp: true}
	}
	if clamped < current {
		// Moving up: siblings in [clamped, current) shift down one slot.
		return Reposition{Target: clamped, Lo: clamped, Hi: current - 1, Delta: +1}
	}
	// Moving down: siblings in (current, clamped] shift up one slot.
	return Reposition{Target: clamped, Lo: current + 1, Hi: clamped, Delta: -1}
}

// Transfer describes the shifts required to move an entity out of one scope
// and into another at the (clamped) target position. The source scope
// closes the gap left behind; the destination opens one.
type Transfer struct {
	Target int
	// SourceFrom is the exclusive lower bound of source siblings that must
	// shift down one: every sibling with position > SourceFrom.
	SourceFrom int
	// DestFrom is the inclusive lower bound of destination siblings that
	// must shift up one: every sibling with position >= DestFrom.
	DestFrom int
}

// ResolveTransfer computes the shifts for moving an entity currently at
// position current in its source scope into a destination scope that holds
// destCount siblings, at the requested target position.
func ResolveTransfer(current, target, destCount int) Transfer {
	clamped := ClampInsert(target, destCount)
	return Transfer{
		Target:     clamped,
		SourceFrom: current,
		DestFrom:   clamped,
	}
}
