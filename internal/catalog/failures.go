package catalog

import "slices"

// UpsertFailure replaces the queue entry with the same (id, kind) or appends
// a new one.
func UpsertFailure(queue []FailedItem, failure FailedItem) []FailedItem {
	out := slices.Clone(queue)
	for i, existing := range out {
		if existing.ID == failure.ID && existing.Kind == failure.Kind {
			out[i] = failure
			return out
		}
	}
	return append(out, failure)
}

// RemoveFailure drops the entry with the given (id, kind).
func RemoveFailure(queue []FailedItem, id int64, kind Kind) []FailedItem {
	return slices.DeleteFunc(slices.Clone(queue), func(f FailedItem) bool {
		return f.ID == id && f.Kind == kind
	})
}

// FindFailure locates a queued failure. An empty kind matches either kind,
// preferring masters.
func FindFailure(queue []FailedItem, id int64, kind Kind) (FailedItem, bool) {
	var fallback *FailedItem
	for i := range queue {
		f := queue[i]
		if f.ID != id {
			continue
		}
		if kind != "" {
			if f.Kind == kind {
				return f, true
			}
			continue
		}
		if f.Kind == KindMaster {
			return f, true
		}
		if fallback == nil {
			fallback = &queue[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return FailedItem{}, false
}
