package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

var (
	errEmptyRoleName     = errors.New("menu: roleName is required")
	errEmptyTableName    = errors.New("menu: tableName is required")
	errEmptyResource     = errors.New("menu: entry tableName is required")
	errDuplicateRole     = errors.New("menu: duplicate roleName")
	errDuplicateTable    = errors.New("menu: duplicate tableName")
	errEmptyMenuDocument = errors.New("menu: document has no roles")
)

type grants map[string]ActionSet

// Table is a validated, immutable permission table for both domains.
type Table struct {
	doc     MenuDocument
	front   map[string]grants
	back    map[string]grants
	ignored []string
}

// EmptyTable returns a table that grants nothing.
func EmptyTable() *Table {
	return &Table{
		front: map[string]grants{},
		back:  map[string]grants{},
	}
}

// Compile validates a menu document and indexes it by domain principal.
// Every problem found is reported in the returned error. Buttons outside the
// action vocabulary grant nothing and are listed by IgnoredButtons.
func Compile(doc MenuDocument) (*Table, error) {
	if len(doc) == 0 {
		return nil, errEmptyMenuDocument
	}

	t := &Table{
		doc:   normaliseDocument(doc),
		front: make(map[string]grants, len(doc)),
		back:  make(map[string]grants, len(doc)),
	}

	var errs error
	seenRoles := make(map[string]struct{}, len(doc))
	seenTables := make(map[string]struct{}, len(doc))

	for i, rm := range t.doc {
		path := fmt.Sprintf("[%d]", i)

		switch {
		case rm.RoleName == "":
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, errEmptyRoleName))
		default:
			if _, dup := seenRoles[rm.RoleName]; dup {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w %q", path, errDuplicateRole, rm.RoleName))
			}
			seenRoles[rm.RoleName] = struct{}{}
		}

		switch {
		case rm.TableName == "":
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, errEmptyTableName))
		default:
			if _, dup := seenTables[rm.TableName]; dup {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w %q", path, errDuplicateTable, rm.TableName))
			}
			seenTables[rm.TableName] = struct{}{}
		}

		front, err := t.indexGroups(path+".frontMenu", rm.FrontMenu)
		errs = multierr.Append(errs, err)
		back, err := t.indexGroups(path+".backMenu", rm.BackMenu)
		errs = multierr.Append(errs, err)

		if rm.RoleName != "" && loginFlag(rm.HasFrontLogin) {
			t.front[rm.RoleName] = front
		}
		if rm.TableName != "" && loginFlag(rm.HasBackLogin) {
			t.back[rm.TableName] = back
		}
	}

	if errs != nil {
		return nil, errs
	}
	return t, nil
}

func (t *Table) indexGroups(path string, groups []MenuGroup) (grants, error) {
	out := make(grants)
	var errs error
	for gi, group := range groups {
		for ci, entry := range group.Child {
			entryPath := fmt.Sprintf("%s[%d].child[%d]", path, gi, ci)
			if entry.TableName == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", entryPath, errEmptyResource))
				continue
			}
			var set ActionSet
			for _, label := range entry.Buttons {
				action, ok := ActionForLabel(label)
				if !ok {
					t.ignored = append(t.ignored, fmt.Sprintf("%s: %q", entryPath, label))
					continue
				}
				set = set.With(action)
			}
			// A resource listed under several groups grants the union.
			out[entry.TableName] = out[entry.TableName].Union(set)
		}
	}
	return out, errs
}

func normaliseDocument(doc MenuDocument) MenuDocument {
	out := doc.Clone()
	for i := range out {
		out[i].RoleName = strings.TrimSpace(out[i].RoleName)
		out[i].TableName = strings.TrimSpace(out[i].TableName)
		normaliseGroups(out[i].BackMenu)
		normaliseGroups(out[i].FrontMenu)
	}
	return out
}

func normaliseGroups(groups []MenuGroup) {
	for gi := range groups {
		for ci := range groups[gi].Child {
			entry := &groups[gi].Child[ci]
			entry.TableName = strings.TrimSpace(entry.TableName)
			entry.Buttons = normaliseLabels(entry.Buttons)
		}
	}
}

func normaliseLabels(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var result []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

// IgnoredButtons lists the buttons, by document path, that name no known
// action. They stay in the document for rendering but are never granted.
func (t *Table) IgnoredButtons() []string {
	if t == nil || len(t.ignored) == 0 {
		return nil
	}
	return append([]string(nil), t.ignored...)
}

// Document returns a copy of the normalised menu document.
func (t *Table) Document() MenuDocument {
	if t == nil {
		return nil
	}
	return t.doc.Clone()
}

// Lookup returns the actions granted to principal on resource in a domain.
func (t *Table) Lookup(domain Domain, principal, resource string) ActionSet {
	if t == nil {
		return 0
	}
	g := t.grantsFor(domain, principal)
	if g == nil {
		return 0
	}
	return g[resource]
}

// Principals lists the principals known to a domain, sorted.
func (t *Table) Principals(domain Domain) []string {
	if t == nil {
		return nil
	}
	index := t.index(domain)
	out := make([]string, 0, len(index))
	for p := range index {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Resources lists the resources configured for a principal, sorted.
func (t *Table) Resources(domain Domain, principal string) []string {
	if t == nil {
		return nil
	}
	g := t.grantsFor(domain, principal)
	out := make([]string, 0, len(g))
	for r := range g {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (t *Table) grantsFor(domain Domain, principal string) grants {
	index := t.index(domain)
	if index == nil {
		return nil
	}
	return index[principal]
}

func (t *Table) index(domain Domain) map[string]grants {
	switch domain {
	case DomainFront:
		return t.front
	case DomainBack:
		return t.back
	default:
		return nil
	}
}

func (t *Table) menusFor(domain Domain, principal string) []MenuGroup {
	for _, rm := range t.doc {
		switch domain {
		case DomainFront:
			if rm.RoleName == principal && loginFlag(rm.HasFrontLogin) {
				return rm.FrontMenu
			}
		case DomainBack:
			if rm.TableName == principal && loginFlag(rm.HasBackLogin) {
				return rm.BackMenu
			}
		}
	}
	return nil
}
