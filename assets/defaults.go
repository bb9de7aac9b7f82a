package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultHandlersYAML contains the embedded default handler table.
// Row order is the tie-break order between equally scored handlers.
//
//go:embed defaults/handlers.yaml
var DefaultHandlersYAML []byte

// DefaultContactsYAML contains the embedded default address book.
//
//go:embed defaults/contacts.yaml
var DefaultContactsYAML []byte
