package led

import "testing"

func TestStateSanitized(t *testing.T) {
	tests := []struct {
		name string
		in   State
		want State
	}{
		{
			name: "black drops timing and breathing",
			in:   State{OnMs: 500, OffMs: 500, Breathe: true, Level: 255},
			want: State{Level: 255},
		},
		{
			name: "missing off period means static",
			in:   State{R: 255, OnMs: 100, OffMs: 0, Breathe: true, Level: 255},
			want: State{R: 255, Level: 255},
		},
		{
			name: "negative on period means static",
			in:   State{G: 10, OnMs: -1, OffMs: 300},
			want: State{G: 10},
		},
		{
			name: "too short to breathe keeps blinking",
			in:   State{B: 1, OnMs: 249, OffMs: 1000, Breathe: true},
			want: State{B: 1, OnMs: 249, OffMs: 1000},
		},
		{
			name: "long enough to breathe",
			in:   State{R: 1, OnMs: 250, OffMs: 250, Breathe: true},
			want: State{R: 1, OnMs: 250, OffMs: 250, Breathe: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Sanitized(); got != tt.want {
				t.Errorf("Sanitized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStateSanitizedBlackAlwaysNormalizes(t *testing.T) {
	for _, on := range []int{-5, 0, 50, 500, 60000} {
		for _, off := range []int{-5, 0, 50, 500, 60000} {
			for _, breathe := range []bool{false, true} {
				got := State{OnMs: on, OffMs: off, Breathe: breathe}.Sanitized()
				if got.OnMs != 0 || got.OffMs != 0 || got.Breathe {
					t.Fatalf("black (%d, %d, %v) sanitized to %+v", on, off, breathe, got)
				}
			}
		}
	}
}

func TestStateStyle(t *testing.T) {
	tests := []struct {
		in   State
		want Style
	}{
		{State{}, StyleOff},
		{State{R: 255}, StyleStatic},
		{State{R: 255, OnMs: 500, OffMs: 500}, StyleBlink},
		{State{R: 255, OnMs: 500, OffMs: 500, Breathe: true}, StyleBreathe},
		{State{R: -1, G: -1, B: -1, Level: 255}, StyleOff},
	}

	for _, tt := range tests {
		if got := tt.in.Style(); got != tt.want {
			t.Errorf("%+v.Style() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStyleString(t *testing.T) {
	if StyleBreathe.String() != "breathe" || Style(9).String() != "style(9)" {
		t.Errorf("unexpected Style strings %q %q", StyleBreathe, Style(9))
	}
}
