package debounce

import (
	"reflect"
	"testing"

	"github.com/1broseidon/winsettle/internal/window"
)

var (
	p0 = window.Position{X: 1, Y: 1}
	p1 = window.Position{X: 2, Y: 2}
	s0 = window.Size{Width: 10, Height: 20}
	s1 = window.Size{Width: 30, Height: 40}
)

func TestStep_TransitionTable(t *testing.T) {
	tests := []struct {
		name string
		from state
		ev   window.Event
		want state
	}{
		{"idle moved", idle{}, window.Moved{Position: p0}, moving{pos: p0}},
		{"idle resized", idle{}, window.Resized{Size: s0}, resizing{size: s0}},
		{"moving moved keeps latest", moving{pos: p0}, window.Moved{Position: p1}, moving{pos: p1}},
		{"moving resized promotes", moving{pos: p0}, window.Resized{Size: s0}, both{pos: p0, size: s0}},
		{"resizing resized keeps latest", resizing{size: s0}, window.Resized{Size: s1}, resizing{size: s1}},
		{"resizing moved promotes", resizing{size: s0}, window.Moved{Position: p0}, both{pos: p0, size: s0}},
		{"both moved updates position only", both{pos: p0, size: s0}, window.Moved{Position: p1}, both{pos: p1, size: s0}},
		{"both resized updates size only", both{pos: p0, size: s0}, window.Resized{Size: s1}, both{pos: p0, size: s1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := step(tt.from, tt.ev)
			if !ok {
				t.Fatalf("step(%v, %v) reported irrelevant", tt.from, tt.ev)
			}
			if got != tt.want {
				t.Fatalf("step(%v, %v) = %v, want %v", tt.from, tt.ev, got, tt.want)
			}
		})
	}
}

func TestStep_IrrelevantEventKeepsState(t *testing.T) {
	for _, from := range []state{idle{}, moving{pos: p0}, resizing{size: s0}, both{pos: p0, size: s0}} {
		got, ok := step(from, window.Other{Kind: "map"})
		if ok {
			t.Fatalf("step(%v, other) reported relevant", from)
		}
		if got != from {
			t.Fatalf("step(%v, other) = %v, want unchanged", from, got)
		}
	}
}

func TestFlush(t *testing.T) {
	tests := []struct {
		name string
		from state
		want []window.Event
	}{
		{"idle", idle{}, nil},
		{"moving", moving{pos: p0}, []window.Event{window.Moved{Position: p0}}},
		{"resizing", resizing{size: s0}, []window.Event{window.Resized{Size: s0}}},
		{"both is position then size", both{pos: p1, size: s1}, []window.Event{
			window.Moved{Position: p1},
			window.Resized{Size: s1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flush(tt.from); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("flush(%v) = %v, want %v", tt.from, got, tt.want)
			}
		})
	}
}

func TestStep_BothThenMoveFlushesUnchangedSize(t *testing.T) {
	var s state = idle{}
	for _, ev := range []window.Event{
		window.Moved{Position: p0},
		window.Resized{Size: s0},
		window.Moved{Position: p1},
	} {
		s, _ = step(s, ev)
	}
	want := []window.Event{window.Moved{Position: p1}, window.Resized{Size: s0}}
	if got := flush(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("flush = %v, want %v", got, want)
	}
}
