package validate_test

import (
	"testing"

	"greenleaf/internal/validate"
)

func TestQ(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  vitamin  ", "vitamin", true},
		{"", "", true},
		{"Nature's Way", "Nature's Way", true},
		{"<script>", "<script>", false},
	}
	for _, c := range cases {
		got, ok := validate.Q(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("Q(%q) = %q,%v want %q,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestQtyClamps(t *testing.T) {
	for in, want := range map[string]int{"3": 3, "0": 1, "-4": 1, "150": 99, "abc": 1, " 7 ": 7} {
		if got := validate.Qty(in); got != want {
			t.Errorf("Qty(%q) = %d want %d", in, got, want)
		}
	}
}

func TestDelta(t *testing.T) {
	if n, ok := validate.Delta("-1"); !ok || n != -1 {
		t.Fatalf("Delta(-1) = %d,%v", n, ok)
	}
	if _, ok := validate.Delta("x"); ok {
		t.Fatal("Delta accepted garbage")
	}
	if _, ok := validate.Delta("1000"); ok {
		t.Fatal("Delta accepted an out-of-range step")
	}
}

func TestID(t *testing.T) {
	if _, ok := validate.ID("42"); !ok {
		t.Fatal("numeric id rejected")
	}
	if _, ok := validate.ID("../etc"); ok {
		t.Fatal("path-like id accepted")
	}
	if _, ok := validate.ID(""); ok {
		t.Fatal("empty id accepted")
	}
}

func TestRatingAndPrice(t *testing.T) {
	if r, ok := validate.Rating(""); !ok || r != 0 {
		t.Fatal("empty rating should mean no constraint")
	}
	if _, ok := validate.Rating("6"); ok {
		t.Fatal("rating above 5 accepted")
	}
	if p, ok := validate.Price("12.5"); !ok || p != 12.5 {
		t.Fatalf("Price(12.5) = %v,%v", p, ok)
	}
	if _, ok := validate.Price("-1"); ok {
		t.Fatal("negative price accepted")
	}
	if _, ok := validate.Price("NaN"); ok {
		t.Fatal("NaN price accepted")
	}
}
