package layout

// Reconcile merges the remote list with cached placements. The remote list
// decides membership and order, and always supplies title and language. A
// cached id keeps its transform; any other id is placed by gen from its index
// and the list length. Cached ids missing from remote are dropped, and
// repeated remote ids are kept once.
func Reconcile(remote []Remote, cache map[string]Placement, gen Generator) []Entity {
	seen := make(map[string]bool, len(remote))
	unique := make([]Remote, 0, len(remote))
	for _, r := range remote {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		unique = append(unique, r)
	}

	out := make([]Entity, 0, len(unique))
	for i, r := range unique {
		e := Entity{ID: r.ID, Title: r.Title, Language: r.Language}
		if p, ok := cache[r.ID]; ok {
			e.Transform = p.Transform()
		} else {
			e.Transform = gen.Place(i, len(unique))
		}
		out = append(out, e)
	}
	return out
}
