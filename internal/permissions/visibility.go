package permissions

// VisibleMenu returns the navigation groups the actor may open, in configured
// order. Entries are kept when they grant 查看; groups left empty are dropped.
// The admin table sees the merged back menus of every principal.
func (r *Resolver) VisibleMenu(domain Domain, actor Actor) []MenuGroup {
	if r == nil {
		return nil
	}
	table := r.table.Load()

	if domain == DomainBack && r.IsAdmin(actor) {
		return mergeBackMenus(table)
	}

	principal, ok := r.principal(domain, actor)
	if !ok {
		return nil
	}

	var out []MenuGroup
	for _, group := range cloneGroups(table.menusFor(domain, principal)) {
		visible := group.Child[:0]
		for _, entry := range group.Child {
			if table.Lookup(domain, principal, entry.TableName).Has(ActionView) {
				visible = append(visible, entry)
			}
		}
		if len(visible) == 0 {
			continue
		}
		group.Child = visible
		out = append(out, group)
	}
	return out
}

func mergeBackMenus(table *Table) []MenuGroup {
	var out []MenuGroup
	groupIndex := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, rm := range table.doc {
		for _, group := range rm.BackMenu {
			idx, ok := groupIndex[group.Menu]
			if !ok {
				idx = len(out)
				groupIndex[group.Menu] = idx
				seen[group.Menu] = make(map[string]struct{})
				out = append(out, MenuGroup{Menu: group.Menu})
			}
			for _, entry := range group.Child {
				if _, dup := seen[group.Menu][entry.TableName]; dup {
					continue
				}
				seen[group.Menu][entry.TableName] = struct{}{}
				entry.Buttons = AllActionLabels()
				out[idx].Child = append(out[idx].Child, entry)
			}
		}
	}

	filtered := out[:0]
	for _, g := range out {
		if len(g.Child) > 0 {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// AllActionLabels lists the label of every grantable action.
func AllActionLabels() []string {
	actions := AllActions()
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Label()
	}
	return out
}
