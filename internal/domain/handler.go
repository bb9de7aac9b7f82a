package domain

import (
	"fmt"
	"strings"
)

// Category tags a handler with a coarse capability family.
type Category string

const (
	CategoryEntertainment Category = "entertainment"
	CategoryCommunication Category = "communication"
	CategoryInformation   Category = "information"
	CategorySystem        Category = "system"
	CategoryProductivity  Category = "productivity"
	CategoryOther         Category = "other"
)

// ParseCategory validates a category name read from a handler table.
func ParseCategory(value string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(value))); c {
	case CategoryEntertainment, CategoryCommunication, CategoryInformation,
		CategorySystem, CategoryProductivity, CategoryOther:
		return c, nil
	case "":
		return CategoryOther, nil
	default:
		return "", fmt.Errorf("unknown handler category %q", value)
	}
}

// HandlerSpec is one row of the declarative handler table.
type HandlerSpec struct {
	ID       string   `yaml:"id"`
	Keywords []string `yaml:"keywords"`
	Category string   `yaml:"category"`
	Action   string   `yaml:"action"`
}

// HandlerTable is the YAML root of a handler table file.
type HandlerTable struct {
	Handlers []HandlerSpec `yaml:"handlers"`
	// Source is the file the table came from, or BuiltinHandlerSource.
	Source string `yaml:"-"`
}

// BuiltinHandlerSource marks a table loaded from the embedded defaults.
const BuiltinHandlerSource = "built-in"

// HandlerInfo is the introspection view of a registered handler.
type HandlerInfo struct {
	Keywords []string `json:"keywords"`
	Category Category `json:"category"`
}

// Match is the transient score of one handler against one command.
type Match struct {
	HandlerID  string
	Confidence float64
	Category   Category
}
