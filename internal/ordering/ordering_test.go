package ordering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkanban/board-api/internal/ordering"
)

func TestClampTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target int
		count  int
		want   int
	}{
		{"within range", 1, 3, 1},
		{"negative", -5, 3, 0},
		{"beyond end", 99, 3, 2},
		{"exactly end", 2, 3, 2},
		{"empty scope", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ordering.ClampTarget(tt.target, tt.count))
		})
	}
}

func TestClampInsert(t *testing.T) {
	t.Parallel()

	// Inserting may target one past the last sibling.
	assert.Equal(t, 2, ordering.ClampInsert(5, 2))
	assert.Equal(t, 2, ordering.ClampInsert(2, 2))
	assert.Equal(t, 0, ordering.ClampInsert(-1, 2))
	assert.Equal(t, 0, ordering.ClampInsert(3, 0))
}

func TestResolveReposition(t *testing.T) {
	t.Parallel()

	t.Run("same position is a no-op", func(t *testing.T) {
		t.Parallel()
		r := ordering.ResolveReposition(1, 1, 3)
		assert.True(t, r.NoOp)
		assert.Equal(t, 1, r.Target)
	})

	t.Run("clamped target equal to current is a no-op", func(t *testing.T) {
		t.Parallel()
		r := ordering.ResolveReposition(2, 99, 3)
		assert.True(t, r.NoOp)
		assert.Equal(t, 2, r.Target)
	})

	t.Run("moving up shifts the displaced range down", func(t *testing.T) {
		t.Parallel()
		// Positions [0,1,2], move the entity at 2 to 0: siblings at 0 and
		// 1 shift to 1 and 2.
		r := ordering.ResolveReposition(2, 0, 3)
		assert.False(t, r.NoOp)
		assert.Equal(t, 0, r.Target)
		assert.Equal(t, 0, r.Lo)
		assert.Equal(t, 1, r.Hi)
		assert.Equal(t, +1, r.Delta)
	})

	t.Run("moving down shifts the displaced range up", func(t *testing.T) {
		t.Parallel()
		r := ordering.ResolveReposition(0, 2, 3)
		assert.False(t, r.NoOp)
		assert.Equal(t, 2, r.Target)
		assert.Equal(t, 1, r.Lo)
		assert.Equal(t, 2, r.Hi)
		assert.Equal(t, -1, r.Delta)
	})
}

// applyReposition simulates the store applying a resolved move to a scope
// of positions, returning the resulting position of each entity index.
func applyReposition(positions []int, entity int, r ordering.Reposition) []int {
	out := make([]int, len(positions))
	copy(out, positions)
	if r.NoOp {
		return out
	}
	for i, p := range out {
		if i == entity {
			continue
		}
		if p >= r.Lo && p <= r.Hi {
			out[i] = p + r.Delta
		}
	}
	out[entity] = r.Target
	return out
}

func TestRepositionKeepsPositionsDense(t *testing.T) {
	t.Parallel()

	const count = 5
	for current := 0; current < count; current++ {
		for target := -2; target < count+2; target++ {
			positions := []int{0, 1, 2, 3, 4}
			r := ordering.ResolveReposition(current, target, count)
			got := applyReposition(positions, current, r)

			seen := make(map[int]bool, count)
			for _, p := range got {
				assert.GreaterOrEqual(t, p, 0)
				assert.Less(t, p, count)
				assert.False(t, seen[p],
					"duplicate position %d moving %d to %d", p, current, target)
				seen[p] = true
			}
		}
	}
}

func TestResolveTransfer(t *testing.T) {
	t.Parallel()

	t.Run("target clamps to end of destination", func(t *testing.T) {
		t.Parallel()
		// Destination holds 2 tasks: a requested position of 5 lands at 2.
		tr := ordering.ResolveTransfer(1, 5, 2)
		assert.Equal(t, 2, tr.Target)
		assert.Equal(t, 1, tr.SourceFrom)
		assert.Equal(t, 2, tr.DestFrom)
	})

	t.Run("insert into middle", func(t *testing.T) {
		t.Parallel()
		tr := ordering.ResolveTransfer(0, 1, 3)
		assert.Equal(t, 1, tr.Target)
		assert.Equal(t, 0, tr.SourceFrom)
		assert.Equal(t, 1, tr.DestFrom)
	})

	t.Run("negative target clamps to head", func(t *testing.T) {
		t.Parallel()
		tr := ordering.ResolveTransfer(2, -3, 4)
		assert.Equal(t, 0, tr.Target)
		assert.Equal(t, 0, tr.DestFrom)
	})
}
