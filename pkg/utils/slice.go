package utils

func FilterSlice[S ~[]E, E any](s S, keep func(E) bool) S {
	res := make(S, 0, len(s))
	for _, e := range s {
		if keep(e) {
			res = append(res, e)
		}
	}
	return res
}

// AppendUniqSlice appends the elements of items not already present in dst,
// keeping first-seen order.
func AppendUniqSlice[E comparable](dst []E, items ...E) []E {
	seen := make(map[E]struct{}, len(dst)+len(items))
	for _, e := range dst {
		seen[e] = struct{}{}
	}
	for _, e := range items {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		dst = append(dst, e)
	}
	return dst
}

func Or[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
