package labels

// Vector holds one canonical label per vertex.
type Vector []int32

// Combine maps a label to its canonical representative:
//
//	10, 23, 26 -> 2
//	27         -> 3
//	19, 20     -> 18
//
// Every other label maps to itself, so Combine is idempotent.
func Combine(id int32) int32 {
	switch id {
	case 10, 23, 26:
		return 2
	case 27:
		return 3
	case 19, 20:
		return 18
	default:
		return id
	}
}

// CombineAll returns a new vector with Combine applied to every element.
// src is not modified.
func CombineAll(src []int32) Vector {
	out := make(Vector, len(src))
	for i, id := range src {
		out[i] = Combine(id)
	}
	return out
}

// Len reports the number of vertices in v.
func (v Vector) Len() int { return len(v) }
