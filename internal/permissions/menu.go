package permissions

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// MenuDocument is the menu configuration consumed by the console: one entry
// per login principal, each carrying a back-office and a front-end menu.
type MenuDocument []RoleMenu

// RoleMenu describes the menus of one principal. RoleName keys the front
// domain and TableName keys the back domain.
type RoleMenu struct {
	RoleName      string      `json:"roleName" yaml:"roleName" validate:"required"`
	TableName     string      `json:"tableName" yaml:"tableName" validate:"required"`
	HasBackLogin  string      `json:"hasBackLogin,omitempty" yaml:"hasBackLogin,omitempty"`
	HasFrontLogin string      `json:"hasFrontLogin,omitempty" yaml:"hasFrontLogin,omitempty"`
	BackMenu      []MenuGroup `json:"backMenu" yaml:"backMenu"`
	FrontMenu     []MenuGroup `json:"frontMenu" yaml:"frontMenu"`
}

// MenuGroup is a titled navigation group.
type MenuGroup struct {
	Menu  string      `json:"menu" yaml:"menu"`
	Child []MenuEntry `json:"child" yaml:"child"`
}

// MenuEntry binds a resource to the buttons shown for it.
type MenuEntry struct {
	Menu      string   `json:"menu" yaml:"menu"`
	MenuJump  string   `json:"menuJump,omitempty" yaml:"menuJump,omitempty"`
	TableName string   `json:"tableName" yaml:"tableName"`
	Buttons   []string `json:"buttons" yaml:"buttons"`
}

// Format identifies a menu document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseMenuDocument decodes a menu document. JSON input may contain comments
// and trailing commas.
func ParseMenuDocument(data []byte, format Format) (MenuDocument, error) {
	var doc MenuDocument
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("menu: decode yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("menu: decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("menu: unsupported format %q", format)
	}
	return doc, nil
}

// Clone returns a deep copy of the document.
func (d MenuDocument) Clone() MenuDocument {
	if d == nil {
		return nil
	}
	out := make(MenuDocument, len(d))
	for i, rm := range d {
		out[i] = rm
		out[i].BackMenu = cloneGroups(rm.BackMenu)
		out[i].FrontMenu = cloneGroups(rm.FrontMenu)
	}
	return out
}

func cloneGroups(groups []MenuGroup) []MenuGroup {
	if groups == nil {
		return nil
	}
	out := make([]MenuGroup, len(groups))
	for i, g := range groups {
		out[i].Menu = g.Menu
		if g.Child != nil {
			out[i].Child = make([]MenuEntry, len(g.Child))
			for j, e := range g.Child {
				out[i].Child[j] = e
				out[i].Child[j].Buttons = append([]string(nil), e.Buttons...)
			}
		}
	}
	return out
}

// loginFlag interprets the yes/no markers of the generated configuration.
// An absent marker allows login.
func loginFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "否", "no", "false", "0", "n":
		return false
	default:
		return true
	}
}
