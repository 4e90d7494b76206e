package lang

import (
	"errors"
	"testing"
)

// FuzzParseTree checks that any input either parses or fails with a lexical
// or syntax error, and that a successful tree re-parses to the same tree.
func FuzzParseTree(f *testing.F) {
	f.Add("1 + 2 * 3")
	f.Add("10 - 3 - 2")
	f.Add("vec3(1, 2.5, x).z")
	f.Add("!a && -b.y || f()")
	f.Add("((a)")
	f.Add("a = b")
	f.Add("1.2.3")

	f.Fuzz(func(t *testing.T, input string) {
		n, err := ParseTree(input)
		if err != nil {
			if !errors.Is(err, ErrLex) && !errors.Is(err, ErrParse) {
				t.Fatalf("unexpected error kind %T: %v", err, err)
			}

			return
		}

		again, err := ParseTree(n.String())
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", n.String(), err)
		}

		if again.String() != n.String() {
			t.Fatalf("re-parse changed tree: %s != %s", again, n)
		}
	})
}
