package conv

import "testing"

func TestItoa(t *testing.T) {
	var buf [20]byte
	cases := map[int64]string{0: "0", 7: "7", -353: "-353", 1412: "1412"}
	for n, want := range cases {
		if got := string(Itoa(buf[:], n)); got != want {
			t.Fatalf("Itoa(%d)=%q want %q", n, got, want)
		}
	}
}

func TestFixed(t *testing.T) {
	var buf [24]byte
	cases := []struct {
		v    float64
		d    int
		want string
	}{
		{6.8, 2, "6.80"},
		{9.008, 3, "9.008"},
		{1.8, 0, "2"},
		{0.05, 1, "0.1"},
		{-0.004, 2, "0.00"},
		{-12.453, 1, "-12.5"},
		{100, 1, "100.0"},
	}
	for _, c := range cases {
		if got := string(Fixed(buf[:], c.v, c.d)); got != c.want {
			t.Fatalf("Fixed(%v,%d)=%q want %q", c.v, c.d, got, c.want)
		}
	}
}

func TestFixedShortBuffer(t *testing.T) {
	var buf [3]byte
	if got := Fixed(buf[:], 12.34, 2); len(got) != 0 {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestBool(t *testing.T) {
	var buf [1]byte
	if string(Bool(buf[:], true)) != "1" || string(Bool(buf[:], false)) != "0" {
		t.Fatal("bool formatting")
	}
}
