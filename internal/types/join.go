package types

// CommonSupertype returns the least common supertype found by walking the
// supertypes of the first operand; Any when nothing narrower fits.
func (c *Checker) CommonSupertype(ts []TypeID) TypeID {
	b := c.In.Builtins()
	nullable := false
	var rest []TypeID
	for _, t := range ts {
		tt, ok := c.In.Lookup(t)
		if !ok || tt.Kind == KindError {
			return b.Error
		}
		if tt.Nullable {
			nullable = true
		}
		if tt.Kind == KindNothing {
			continue
		}
		rest = append(rest, c.In.WithNullable(t, false))
	}
	if len(rest) == 0 {
		if nullable {
			return b.NullableNothing
		}
		return b.Nothing
	}
	fits := func(cand TypeID) bool {
		for _, t := range rest {
			if !c.IsSubtype(t, cand) {
				return false
			}
		}
		return true
	}
	result := NoTypeID
	for _, cand := range rest {
		if fits(cand) {
			result = cand
			break
		}
	}
	if !result.IsValid() {
		seen := map[TypeID]bool{rest[0]: true}
		queue := c.DirectSupertypes(rest[0])
		for len(queue) > 0 && !result.IsValid() {
			cur := queue[0]
			queue = queue[1:]
			if seen[cur] {
				continue
			}
			seen[cur] = true
			if fits(cur) {
				result = cur
				break
			}
			queue = append(queue, c.DirectSupertypes(cur)...)
		}
	}
	if !result.IsValid() {
		result = c.In.Class(c.Any, nil, false)
	}
	if nullable {
		return c.In.WithNullable(result, true)
	}
	return result
}
