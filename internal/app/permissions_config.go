package app

import "github.com/charlesng35/gymadmin/internal/permissions"

// ResolverOptions converts PermissionsConfig into resolver options.
func (c PermissionsConfig) ResolverOptions() []permissions.Option {
	var opts []permissions.Option
	if c.AdminTable != "" {
		opts = append(opts, permissions.WithAdminTable(c.AdminTable))
	}
	if c.BaselineRole != "" {
		opts = append(opts, permissions.WithBaselineRole(c.BaselineRole))
	}
	return opts
}
