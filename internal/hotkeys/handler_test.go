package hotkeys

import (
	"errors"
	"slices"
	"testing"
)

type fakeRestorer struct {
	calls int
	ok    bool
	err   error
}

func (f *fakeRestorer) RestoreActive() (bool, error) {
	f.calls++
	return f.ok, f.err
}

func TestNewHandler_WithoutX11(t *testing.T) {
	r := &fakeRestorer{}
	h := NewHandler(nil, r)
	if h.xu != nil {
		t.Fatalf("expected no X connection for a nil backend")
	}
	if h.restorer != r {
		t.Fatalf("expected restorer to be kept")
	}
}

func TestHandler_RestoreCallsRestorer(t *testing.T) {
	tests := []struct {
		name string
		r    *fakeRestorer
	}{
		{"restored", &fakeRestorer{ok: true}},
		{"nothing stored", &fakeRestorer{}},
		{"error", &fakeRestorer{err: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{restorer: tt.r}
			h.restore()
			if tt.r.calls != 1 {
				t.Fatalf("expected one restore call, got %d", tt.r.calls)
			}
		})
	}
}

func TestLockCombinations(t *testing.T) {
	tests := []struct {
		name  string
		locks []uint16
		want  []uint16
	}{
		{"caps only", []uint16{2}, []uint16{0, 2}},
		{"caps and numlock", []uint16{2, 16}, []uint16{0, 2, 16, 18}},
		{"missing scroll lock", []uint16{2, 16, 0}, []uint16{0, 2, 16, 18}},
		{"numlock shares caps mask", []uint16{2, 2}, []uint16{0, 2}},
		{"all three", []uint16{2, 16, 128}, []uint16{0, 2, 16, 18, 128, 130, 144, 146}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lockCombinations(tt.locks...)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("lockCombinations(%v) = %v, want %v", tt.locks, got, tt.want)
			}
		})
	}
}
