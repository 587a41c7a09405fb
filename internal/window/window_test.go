package window

import "testing"

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"moved", Moved{Position{1, 2}}, true},
		{"resized", Resized{Size{3, 4}}, true},
		{"other", Other{Kind: "map"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevant(tt.ev); got != tt.want {
				t.Fatalf("Relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestGeometryApply_UpdatesOneAxis(t *testing.T) {
	g := Geometry{Position: Position{10, 20}, Size: Size{800, 600}}

	g = g.Apply(Moved{Position{-5, 7}})
	if g.Position != (Position{-5, 7}) || g.Size != (Size{800, 600}) {
		t.Fatalf("after move: %+v", g)
	}

	g = g.Apply(Resized{Size{1024, 768}})
	if g.Position != (Position{-5, 7}) || g.Size != (Size{1024, 768}) {
		t.Fatalf("after resize: %+v", g)
	}

	g = g.Apply(Other{Kind: "unmap"})
	if g.Position != (Position{-5, 7}) || g.Size != (Size{1024, 768}) {
		t.Fatalf("other event changed geometry: %+v", g)
	}
}

func TestGeometryIsZero(t *testing.T) {
	if !(Geometry{}).IsZero() {
		t.Fatal("expected empty geometry to be zero")
	}
	if (Geometry{Size: Size{1, 1}}).IsZero() {
		t.Fatal("expected sized geometry to be non-zero")
	}
}
