package backtrace

import (
	"fmt"
	"testing"

	"ensue/internal/token"
)

func TestError(t *testing.T) {
	cases := []struct {
		name string
		err  *Backtrace
		want string
	}{
		{"runtime", Newf(token.Mark{Line: 3, Column: 7}, "bad %s", "thing"), "3:7: bad thing"},
		{"bug", NewBug(token.Mark{Line: 1, Column: 1}, "oops"), "1:1: internal error: oops"},
		{"typed", New(Type, token.Mark{Line: 2, Column: 4}, "no"), "2:4: no"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("running main.ens: %w", New(Resolution, token.Mark{}, "undefined identifier `x`"))
	if KindOf(err) != Resolution {
		t.Errorf("expected %s, got %s", Resolution, KindOf(err))
	}
	if !Is(err, Resolution) || Is(err, Type) {
		t.Errorf("Is does not match the wrapped kind")
	}
	if IsBug(err) {
		t.Errorf("resolution error reported as bug")
	}
	if KindOf(fmt.Errorf("plain")) != Runtime {
		t.Errorf("plain errors should default to runtime")
	}
}
