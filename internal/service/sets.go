package service

import "sort"

// intersect returns the ids present in both slices, ascending.
func intersect(a, b []uint) []uint {
	in := make(map[uint]struct{}, len(b))
	for _, id := range b {
		in[id] = struct{}{}
	}
	out := make([]uint, 0)
	for _, id := range a {
		if _, ok := in[id]; ok {
			out = append(out, id)
			delete(in, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// difference returns the ids in a that are not in b, ascending.
func difference(a, b []uint) []uint {
	exclude := make(map[uint]struct{}, len(b))
	for _, id := range b {
		exclude[id] = struct{}{}
	}
	out := make([]uint, 0)
	for _, id := range a {
		if _, ok := exclude[id]; !ok {
			out = append(out, id)
			exclude[id] = struct{}{}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
