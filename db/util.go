package db

// FindAll finds all T's that satisfies predicate `pred` in `ar`, if none is
// found an empty slice is returned (not nil!)
func FindAll[T any, A ~[]T](ar A, pred func(t T) bool) []T {
	ts := []T{}
	for _, t := range ar {
		if pred(t) {
			ts = append(ts, t)
		}
	}
	return ts
}

// RemoveIf returns a copy of ar without the elements satisfying pred.
func RemoveIf[T any, A ~[]T](ar A, pred func(t T) bool) []T {
	newar := []T{}
	for _, a := range ar {
		if !pred(a) {
			newar = append(newar, a)
		}
	}
	return newar
}
