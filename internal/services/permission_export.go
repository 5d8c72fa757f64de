package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/charlesng35/gymadmin/internal/permissions"
)

// Sheet names of the exported workbook, one per domain.
const (
	BackSheet  = "后台权限"
	FrontSheet = "前台权限"
)

const grantedMark = "✓"

// PermissionExporter renders the active permission table as a workbook with
// one row per principal and resource.
type PermissionExporter struct {
	resolver *permissions.Resolver
}

// NewPermissionExporter constructs an exporter reading from resolver.
func NewPermissionExporter(resolver *permissions.Resolver) (*PermissionExporter, error) {
	if resolver == nil {
		return nil, errors.New("permission exporter: resolver is required")
	}
	return &PermissionExporter{resolver: resolver}, nil
}

// Write encodes the workbook to w.
func (e *PermissionExporter) Write(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	table := e.resolver.Table()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("permission exporter: style: %w", err)
	}

	sheets := []struct {
		name   string
		domain permissions.Domain
	}{
		{BackSheet, permissions.DomainBack},
		{FrontSheet, permissions.DomainFront},
	}

	for i, sheet := range sheets {
		idx, err := f.NewSheet(sheet.name)
		if err != nil {
			return fmt.Errorf("permission exporter: sheet %s: %w", sheet.name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeDomainSheet(f, sheet.name, table, sheet.domain, headerStyle); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("permission exporter: drop default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("permission exporter: write: %w", err)
	}
	return nil
}

func writeDomainSheet(f *excelize.File, sheet string, table *permissions.Table, domain permissions.Domain, headerStyle int) error {
	actions := permissions.AllActions()

	header := make([]interface{}, 0, len(actions)+2)
	header = append(header, "主体", "资源")
	for _, action := range actions {
		header = append(header, action.Label())
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("permission exporter: header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("permission exporter: header style: %w", err)
	}

	row := 2
	for _, principal := range table.Principals(domain) {
		for _, resource := range table.Resources(domain, principal) {
			granted := table.Lookup(domain, principal, resource)

			values := make([]interface{}, 0, len(header))
			values = append(values, principal, resource)
			for _, action := range actions {
				if granted.Has(action) {
					values = append(values, grantedMark)
				} else {
					values = append(values, "")
				}
			}

			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("permission exporter: row %d: %w", row, err)
			}
			row++
		}
	}

	return f.SetColWidth(sheet, "A", "B", 18)
}
