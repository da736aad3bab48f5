package sales

// Filter returns the rows whose country, category and segment are members of
// the selection sets and whose order date lies inside the selection range.
// The predicates are AND-combined. The input table is never modified.
func Filter(table *Table, sel Selection, policy EmptyPolicy) *Table {
	if table.Len() == 0 {
		return &Table{}
	}
	if policy == "" {
		policy = MatchAll
	}

	sets := []struct {
		dim     Dimension
		allowed map[string]struct{}
		active  bool
	}{
		{DimensionCountry, toSet(sel.Countries), len(sel.Countries) > 0 || policy == MatchNone},
		{DimensionCategory, toSet(sel.Categories), len(sel.Categories) > 0 || policy == MatchNone},
		{DimensionSegment, toSet(sel.Segments), len(sel.Segments) > 0 || policy == MatchNone},
	}

	out := make([]Record, 0, table.Len())
	for _, rec := range table.records {
		if !sel.Range.Contains(rec.OrderDate) {
			continue
		}
		pass := true
		for _, set := range sets {
			if !set.active {
				continue
			}
			if _, ok := set.allowed[rec.Value(set.dim)]; !ok {
				pass = false
				break
			}
		}
		if pass {
			out = append(out, rec)
		}
	}
	return &Table{records: out}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
