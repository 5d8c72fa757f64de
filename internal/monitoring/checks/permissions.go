package checks

import (
	"context"
	"fmt"

	"github.com/charlesng35/gymadmin/internal/monitoring"
	"github.com/charlesng35/gymadmin/internal/permissions"
)

// MenuVersioner reports the active menu revision.
type MenuVersioner interface {
	ActiveVersion() int
}

// Permissions reports whether a menu revision has been loaded into the
// resolver. Until one is, every non-admin check is denied.
func Permissions(resolver *permissions.Resolver, menus MenuVersioner) monitoring.Check {
	return monitoring.NewCheck("permissions", func(context.Context) monitoring.ProbeResult {
		if resolver == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "resolver not configured"}
		}
		table := resolver.Table()
		front := len(table.Principals(permissions.DomainFront))
		back := len(table.Principals(permissions.DomainBack))

		version := 0
		if menus != nil {
			version = menus.ActiveVersion()
		}
		details := fmt.Sprintf("version=%d front=%d back=%d", version, front, back)
		if version == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusDegraded, Details: "no menu revision loaded; " + details}
		}
		return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: details}
	})
}
