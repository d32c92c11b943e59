package hash

import (
	"testing"

	"github.com/hailam/abhelper/internal/board"
)

func TestTableBoundSemantics(t *testing.T) {
	move := board.NewMove(board.E2, board.E4)

	tests := []struct {
		name      string
		bound     Bound
		eval      int32
		alpha     int32
		beta      int32
		wantKnown bool
		wantValue int32
	}{
		{"exact", BoundExact, 42, -100, 100, true, 42},
		{"upper usable", BoundUpper, -150, -100, 100, true, -100},
		{"upper unusable", BoundUpper, 50, -100, 100, false, 0},
		{"lower usable", BoundLower, 150, -100, 100, true, 100},
		{"lower unusable", BoundLower, 50, -100, 100, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := NewTable(1024)
			key := uint64(0xDEADBEEFCAFE)

			tt.PutMove(key, 5, move, tc.eval, tc.bound, 0)

			resp := tt.Get(key, 5, tc.alpha, tc.beta)
			if resp.Known != tc.wantKnown {
				t.Fatalf("Known = %v, want %v", resp.Known, tc.wantKnown)
			}
			if resp.Known && resp.Value != tc.wantValue {
				t.Errorf("Value = %d, want %d", resp.Value, tc.wantValue)
			}
			if resp.Move != move {
				t.Errorf("Move = %v, want %v (move must come back regardless of the score)", resp.Move, move)
			}
		})
	}
}

func TestTableDepthGate(t *testing.T) {
	tt := NewTable(1024)
	key := uint64(12345)

	tt.PutScore(key, 3, 42, BoundExact, 0)

	if resp := tt.Get(key, 5, -100, 100); resp.Known {
		t.Error("entry stored at depth 3 must not answer a depth-5 probe")
	}
	if resp := tt.Get(key, 3, -100, 100); !resp.Known || resp.Value != 42 {
		t.Error("entry stored at depth 3 must answer a depth-3 probe")
	}
	if resp := tt.Get(key, 1, -100, 100); !resp.Known || resp.Value != 42 {
		t.Error("deeper entries answer shallower probes")
	}
}

func TestTableKeyMismatch(t *testing.T) {
	tt := NewTable(8)
	move := board.NewMove(board.G1, board.F3)

	// Two keys mapping to the same slot
	a := uint64(3)
	b := a + 8

	tt.PutMove(a, 4, move, 10, BoundExact, 0)

	resp := tt.Get(b, 1, -100, 100)
	if resp.Known {
		t.Error("colliding key must not produce a known value")
	}
	if resp.Move != board.NoMove {
		t.Errorf("colliding key leaked move %v from another position", resp.Move)
	}

	// Always-replace: the second write wins the slot
	tt.PutScore(b, 1, -7, BoundExact, 0)
	if resp := tt.Get(a, 1, -100, 100); resp.Known {
		t.Error("slot should have been replaced")
	}
	if resp := tt.Get(b, 1, -100, 100); !resp.Known || resp.Value != -7 {
		t.Error("replacement entry not readable")
	}
}

func TestTableEmptySlot(t *testing.T) {
	tt := NewTable(64)

	resp := tt.Get(99, 1, -100, 100)
	if resp.Known {
		t.Error("empty slot reported a known value")
	}
	if resp.Move != board.NoMove {
		t.Errorf("empty slot move = %v, want none", resp.Move)
	}
}

func TestTableClear(t *testing.T) {
	tt := NewTable(64)
	tt.PutScore(7, 2, 13, BoundExact, 0)
	tt.Clear()

	if resp := tt.Get(7, 1, -100, 100); resp.Known {
		t.Error("table not empty after Clear")
	}
}
