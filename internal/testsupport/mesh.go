package testsupport

import (
	"os"
	"strconv"
	"strings"
	"testing"
)

// ReadFields parses the integer SCALARS blocks of a written mesh file,
// keyed by field name.
func ReadFields(t testing.TB, path string) map[string][]int32 {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	text := string(data)
	idx := strings.Index(text, "POINT_DATA")
	if idx < 0 {
		t.Fatalf("%s has no POINT_DATA", path)
	}
	tokens := strings.Fields(text[idx:])
	n, err := strconv.Atoi(tokens[1])
	if err != nil {
		t.Fatalf("point count: %v", err)
	}
	out := make(map[string][]int32)
	for i := 2; i < len(tokens); {
		if tokens[i] != "SCALARS" || i+6+n > len(tokens) {
			t.Fatalf("unexpected token %q at %d in %s", tokens[i], i, path)
		}
		name := tokens[i+1]
		i += 6
		values := make([]int32, n)
		for j := range values {
			v, err := strconv.Atoi(tokens[i+j])
			if err != nil {
				t.Fatalf("field %s value %d: %v", name, j, err)
			}
			values[j] = int32(v)
		}
		out[name] = values
		i += n
	}
	return out
}
