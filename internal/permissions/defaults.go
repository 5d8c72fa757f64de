package permissions

import (
	_ "embed"
	"fmt"
)

//go:embed default_menu.json
var defaultMenuJSON []byte

// DefaultDocument returns the built-in gym console menu.
func DefaultDocument() MenuDocument {
	doc, err := ParseMenuDocument(defaultMenuJSON, FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("permission: embedded default menu: %v", err))
	}
	return doc
}

// DefaultTable compiles the built-in menu.
func DefaultTable() (*Table, error) {
	return Compile(DefaultDocument())
}
