package normalize

// MergeEmployees merges entity lists from multiple source relations into one
// list with unique keys, preserving first-seen insertion order. The key is the
// id, falling back to the full name. For repeated keys the first occurrence
// wins per field; later duplicates only fill fields that are still empty.
func MergeEmployees(lists ...[]*Employee) []*Employee {
	index := make(map[string]*Employee)
	order := make([]string, 0)

	for _, list := range lists {
		for _, e := range list {
			if e == nil {
				continue
			}
			key := e.ID
			if key == "" {
				key = e.FullName
			}
			if key == "" {
				continue
			}

			cur, seen := index[key]
			if !seen {
				clone := *e
				index[key] = &clone
				order = append(order, key)
				continue
			}

			if cur.FullName == "" {
				cur.FullName = e.FullName
			}
			if cur.Phone == nil && e.Phone != nil {
				phone := *e.Phone
				cur.Phone = &phone
			}
			if cur.Role == nil && e.Role != nil {
				role := *e.Role
				cur.Role = &role
			}
		}
	}

	out := make([]*Employee, 0, len(order))
	for _, key := range order {
		out = append(out, index[key])
	}
	return out
}

// MergePatients merges patient lists with the same first-wins semantics.
func MergePatients(lists ...[]*Patient) []*Patient {
	index := make(map[string]*Patient)
	order := make([]string, 0)

	for _, list := range lists {
		for _, p := range list {
			if p == nil {
				continue
			}
			key := p.ID
			if key == "" {
				key = p.FIO
			}
			if key == "" {
				continue
			}

			cur, seen := index[key]
			if !seen {
				clone := *p
				index[key] = &clone
				order = append(order, key)
				continue
			}

			if cur.FIO == "" {
				cur.FIO = p.FIO
			}
			if cur.Phone == nil && p.Phone != nil {
				phone := *p.Phone
				cur.Phone = &phone
			}
		}
	}

	out := make([]*Patient, 0, len(order))
	for _, key := range order {
		out = append(out, index[key])
	}
	return out
}
