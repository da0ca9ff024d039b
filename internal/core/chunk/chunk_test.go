package chunk

import "testing"

func TestSplit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		n    int
		size int
		want []int // lengths of each group
	}{
		{"empty", 0, 3, nil},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"smaller than size", 2, 900, []int{2}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}

	for _, c := range cases {
		xs := make([]int64, c.n)
		for i := range xs {
			xs[i] = int64(i + 1)
		}
		got := Split(xs, c.size)
		if len(got) != len(c.want) {
			t.Fatalf("%s: got %d groups want %d", c.name, len(got), len(c.want))
		}
		for i, g := range got {
			if len(g) != c.want[i] {
				t.Errorf("%s: group %d has %d items want %d", c.name, i, len(g), c.want[i])
			}
		}
	}
}

func TestSplitPreservesOrder(t *testing.T) {
	t.Parallel()

	xs := []int64{10, 20, 30, 40, 50}
	var flat []int64
	for _, g := range Split(xs, 2) {
		flat = append(flat, g...)
	}
	if len(flat) != len(xs) {
		t.Fatalf("flattened length %d want %d", len(flat), len(xs))
	}
	for i := range xs {
		if flat[i] != xs[i] {
			t.Fatalf("order broken at %d: got %d want %d", i, flat[i], xs[i])
		}
	}
}

func TestSplitDefaultSize(t *testing.T) {
	t.Parallel()

	xs := make([]int, DefaultSize+1)
	got := Split(xs, 0) // zero falls back to DefaultSize
	if len(got) != 2 || len(got[0]) != DefaultSize || len(got[1]) != 1 {
		t.Fatalf("default split wrong: %d groups, first %d", len(got), len(got[0]))
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n, start int
		want     string
	}{
		{0, 1, ""},
		{1, 1, "$1"},
		{3, 1, "$1,$2,$3"},
		{3, 2, "$2,$3,$4"}, // leading params reserved
		{2, 10, "$10,$11"},
	}
	for _, c := range cases {
		if got := Placeholders(c.n, c.start); got != c.want {
			t.Errorf("Placeholders(%d,%d)=%q want %q", c.n, c.start, got, c.want)
		}
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	got := Args([]int64{7, 8})
	if len(got) != 2 {
		t.Fatalf("want 2 args got %d", len(got))
	}
	if got[0].(int64) != 7 || got[1].(int64) != 8 {
		t.Fatalf("args not widened in order: %#v", got)
	}
}
