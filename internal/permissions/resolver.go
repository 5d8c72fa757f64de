package permissions

import (
	"strings"
	"sync/atomic"
)

// DefaultAdminTable is the back-office table name that bypasses all checks.
const DefaultAdminTable = "admin"

// Permissions summarises the CRUD grants on one resource.
type Permissions struct {
	View          bool `json:"view"`
	Create        bool `json:"create"`
	Update        bool `json:"update"`
	Remove        bool `json:"remove"`
	HasOperations bool `json:"hasOperations"`
}

// NewPermissions builds a record, deriving HasOperations from the row actions.
func NewPermissions(view, create, update, remove bool) Permissions {
	return Permissions{
		View:          view,
		Create:        create,
		Update:        update,
		Remove:        remove,
		HasOperations: view || update || remove,
	}
}

// Resolver evaluates actor queries against the current table snapshot.
// A nil Resolver denies everything.
type Resolver struct {
	table        atomic.Pointer[Table]
	adminTable   string
	baselineRole string
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithAdminTable overrides the super-admin table name. Blank values keep the default.
func WithAdminTable(name string) Option {
	return func(r *Resolver) {
		if name = strings.TrimSpace(name); name != "" {
			r.adminTable = name
		}
	}
}

// WithBaselineRole sets the front-domain role used when an actor carries none.
func WithBaselineRole(role string) Option {
	return func(r *Resolver) {
		r.baselineRole = strings.TrimSpace(role)
	}
}

// NewResolver constructs a resolver over table. A nil table grants nothing.
func NewResolver(table *Table, opts ...Option) *Resolver {
	r := &Resolver{adminTable: DefaultAdminTable}
	for _, opt := range opts {
		opt(r)
	}
	if table == nil {
		table = EmptyTable()
	}
	r.table.Store(table)
	return r
}

// Table returns the current snapshot.
func (r *Resolver) Table() *Table {
	if r == nil {
		return nil
	}
	return r.table.Load()
}

// Swap installs a new snapshot and returns the previous one. Nil is ignored.
func (r *Resolver) Swap(table *Table) *Table {
	if r == nil || table == nil {
		return r.Table()
	}
	return r.table.Swap(table)
}

// AdminTable returns the configured super-admin table name.
func (r *Resolver) AdminTable() string {
	if r == nil {
		return DefaultAdminTable
	}
	return r.adminTable
}

// IsAdmin reports whether the actor holds the super-admin table name.
func (r *Resolver) IsAdmin(actor Actor) bool {
	if r == nil {
		return false
	}
	return strings.TrimSpace(actor.TableName) == r.adminTable
}

// IsAuth reports whether the actor's role may perform label on resource in
// the front domain. label must be one of the configured labels verbatim.
func (r *Resolver) IsAuth(actor Actor, resource, label string) bool {
	action, ok := ActionForLabel(label)
	if !ok {
		return false
	}
	return r.Allowed(DomainFront, actor, resource, action)
}

// IsBackAuth reports whether the actor's back-office table may perform label
// on resource. The admin table is allowed everything, known label or not.
func (r *Resolver) IsBackAuth(actor Actor, resource, label string) bool {
	if r.IsAdmin(actor) {
		return true
	}
	action, ok := ActionForLabel(label)
	if !ok {
		return false
	}
	return r.Allowed(DomainBack, actor, resource, action)
}

// Allowed evaluates a typed query in the given domain.
func (r *Resolver) Allowed(domain Domain, actor Actor, resource string, action Action) bool {
	if r == nil {
		return false
	}
	if domain == DomainBack && r.IsAdmin(actor) {
		return true
	}

	resource = strings.TrimSpace(resource)
	if resource == "" || !action.Valid() {
		return false
	}

	principal, ok := r.principal(domain, actor)
	if !ok {
		return false
	}
	return r.table.Load().Lookup(domain, principal, resource).Has(action)
}

func (r *Resolver) principal(domain Domain, actor Actor) (string, bool) {
	var p string
	switch domain {
	case DomainFront:
		p = strings.TrimSpace(actor.Role)
		if p == "" {
			p = r.baselineRole
		}
	case DomainBack:
		p = strings.TrimSpace(actor.TableName)
	}
	return p, p != ""
}

// CanView checks the 查看 grant.
func (r *Resolver) CanView(domain Domain, actor Actor, resource string) bool {
	return r.Allowed(domain, actor, resource, ActionView)
}

// CanCreate checks the 新增 grant.
func (r *Resolver) CanCreate(domain Domain, actor Actor, resource string) bool {
	return r.Allowed(domain, actor, resource, ActionCreate)
}

// CanUpdate checks the 修改 grant.
func (r *Resolver) CanUpdate(domain Domain, actor Actor, resource string) bool {
	return r.Allowed(domain, actor, resource, ActionUpdate)
}

// CanDelete checks the 删除 grant.
func (r *Resolver) CanDelete(domain Domain, actor Actor, resource string) bool {
	return r.Allowed(domain, actor, resource, ActionDelete)
}

// GetPermissions aggregates the CRUD grants for resource.
func (r *Resolver) GetPermissions(domain Domain, actor Actor, resource string) Permissions {
	return NewPermissions(
		r.CanView(domain, actor, resource),
		r.CanCreate(domain, actor, resource),
		r.CanUpdate(domain, actor, resource),
		r.CanDelete(domain, actor, resource),
	)
}

// Granted returns every action the actor holds on resource.
func (r *Resolver) Granted(domain Domain, actor Actor, resource string) ActionSet {
	var set ActionSet
	for _, action := range AllActions() {
		if r.Allowed(domain, actor, resource, action) {
			set = set.With(action)
		}
	}
	return set
}
