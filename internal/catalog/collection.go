package catalog

import "slices"

// Merge replaces items whose (id, isMaster) matches an update and appends the
// rest, preserving the original order.
func Merge(items []Item, updates ...Item) []Item {
	out := slices.Clone(items)
	index := make(map[Key]int, len(out))
	for i, it := range out {
		index[it.Key()] = i
	}
	for _, update := range updates {
		if i, ok := index[update.Key()]; ok {
			out[i] = update
			continue
		}
		index[update.Key()] = len(out)
		out = append(out, update)
	}
	return out
}

// Dedupe puts masters before releases and drops every release that some
// master names as its representative. Order within each group is kept.
// Applying it twice yields the same result as applying it once.
func Dedupe(items []Item) []Item {
	masters := make([]Item, 0, len(items))
	releases := make([]Item, 0, len(items))
	represented := make(map[int64]struct{})
	for _, it := range items {
		if it.IsMaster {
			masters = append(masters, it)
			if it.RepresentativeID != 0 {
				represented[it.RepresentativeID] = struct{}{}
			}
			continue
		}
		releases = append(releases, it)
	}
	out := masters
	for _, it := range releases {
		if _, ok := represented[it.ID]; ok {
			continue
		}
		out = append(out, it)
	}
	return out
}

// MaxID returns the highest item id in the collection, the watermark for
// incremental listing. An empty collection yields zero.
func MaxID(items []Item) int64 {
	var highest int64
	for _, it := range items {
		if it.ID > highest {
			highest = it.ID
		}
	}
	return highest
}

// Find returns the item with the given identity.
func Find(items []Item, key Key) (Item, bool) {
	for _, it := range items {
		if it.Key() == key {
			return it, true
		}
	}
	return Item{}, false
}

// FindByID returns items with the given id, masters first.
func FindByID(items []Item, id int64) []Item {
	var out []Item
	for _, it := range items {
		if it.ID == id {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b Item) int {
		switch {
		case a.IsMaster == b.IsMaster:
			return 0
		case a.IsMaster:
			return -1
		default:
			return 1
		}
	})
	return out
}
