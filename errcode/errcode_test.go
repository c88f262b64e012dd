package errcode

import (
	"errors"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":              OK,
		"invalid_params":  InvalidParams,
		"invalid_config":  InvalidConfig,
		"invalid_period":  InvalidPeriod,
		"not_configured":  NotConfigured,
		"travel_limit":    TravelLimit,
		"stalled":         Stalled,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to ok")
	}
	if Of(InvalidParams) != InvalidParams {
		t.Fatal("bare code not extracted")
	}
	w := Wrap(InvalidConfig, "validate", "throttle: min >= max")
	if Of(w) != InvalidConfig {
		t.Fatalf("wrapped code not extracted: %v", Of(w))
	}
	if w.Error() != "validate: invalid_config: throttle: min >= max" {
		t.Fatalf("unexpected message %q", w.Error())
	}
	if Of(errors.New("boom")) != Error {
		t.Fatal("foreign error should map to generic code")
	}
}
