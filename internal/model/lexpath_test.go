package model

import "testing"

// TestLexPathChild tests child path derivation.
func TestLexPathChild(t *testing.T) {
	t.Parallel()

	t.Run("root child", func(t *testing.T) {
		t.Parallel()

		root := LexPath{}
		child := root.Child(3)
		if !child.Equal(LexPath{3}) {
			t.Errorf("expected [3], got %s", child)
		}
		if len(root) != 0 {
			t.Errorf("root modified by Child: %s", root)
		}
	})

	t.Run("siblings do not alias", func(t *testing.T) {
		t.Parallel()

		parent := LexPath{1, 2}
		a := parent.Child(0)
		b := parent.Child(1)
		if !a.Equal(LexPath{1, 2, 0}) {
			t.Errorf("expected [1 2 0], got %s", a)
		}
		if !b.Equal(LexPath{1, 2, 1}) {
			t.Errorf("expected [1 2 1], got %s", b)
		}
	})

	t.Run("depth", func(t *testing.T) {
		t.Parallel()

		if d := (LexPath{}).Depth(); d != 0 {
			t.Errorf("expected depth 0, got %d", d)
		}
		if d := (LexPath{4, 0, 7}).Depth(); d != 3 {
			t.Errorf("expected depth 3, got %d", d)
		}
	})
}

// TestLexPathCompare tests the total order, including the
// shorter-prefix-first rule.
func TestLexPathCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    LexPath
		q    LexPath
		want int
	}{
		{name: "equal", p: LexPath{1, 2}, q: LexPath{1, 2}, want: 0},
		{name: "both empty", p: LexPath{}, q: LexPath{}, want: 0},
		{name: "element less", p: LexPath{1, 2}, q: LexPath{1, 3}, want: -1},
		{name: "element greater", p: LexPath{2}, q: LexPath{1, 9, 9}, want: 1},
		{name: "prefix sorts first", p: LexPath{1, 2}, q: LexPath{1, 2, 0}, want: -1},
		{name: "extension sorts last", p: LexPath{0, 0, 1}, q: LexPath{0, 0}, want: 1},
		{name: "root before everything", p: LexPath{}, q: LexPath{0}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.p.Compare(tt.q); got != tt.want {
				t.Errorf("%s.Compare(%s) = %d, want %d", tt.p, tt.q, got, tt.want)
			}
			// Compare must be antisymmetric.
			if got := tt.q.Compare(tt.p); got != -tt.want {
				t.Errorf("%s.Compare(%s) = %d, want %d", tt.q, tt.p, got, -tt.want)
			}
		})
	}
}

// TestLexPathIsPrefixOf tests prefix detection used by resume pruning.
func TestLexPathIsPrefixOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    LexPath
		q    LexPath
		want bool
	}{
		{name: "empty prefixes all", p: LexPath{}, q: LexPath{5, 1}, want: true},
		{name: "proper prefix", p: LexPath{2, 1}, q: LexPath{2, 1, 3}, want: true},
		{name: "equal is prefix", p: LexPath{2, 1}, q: LexPath{2, 1}, want: true},
		{name: "longer is not prefix", p: LexPath{2, 1, 3}, q: LexPath{2, 1}, want: false},
		{name: "diverging", p: LexPath{2, 2}, q: LexPath{2, 1, 3}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.p.IsPrefixOf(tt.q); got != tt.want {
				t.Errorf("%s.IsPrefixOf(%s) = %v, want %v", tt.p, tt.q, got, tt.want)
			}
		})
	}
}

// TestLexPathString tests log formatting.
func TestLexPathString(t *testing.T) {
	t.Parallel()

	if got := (LexPath{}).String(); got != "[]" {
		t.Errorf("expected [], got %q", got)
	}
	if got := (LexPath{0, 12, 3}).String(); got != "[0 12 3]" {
		t.Errorf("expected [0 12 3], got %q", got)
	}
}

// TestLexPathClone tests that Clone produces independent copies and
// preserves nil.
func TestLexPathClone(t *testing.T) {
	t.Parallel()

	var nilPath LexPath
	if c := nilPath.Clone(); c != nil {
		t.Errorf("expected nil clone, got %s", c)
	}

	p := LexPath{1, 2, 3}
	c := p.Clone()
	c[0] = 9
	if p[0] != 1 {
		t.Errorf("clone aliases original: %s", p)
	}
}
