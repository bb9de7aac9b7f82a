package domain

import "strings"

// Contact is an address book entry used by the communication handlers.
type Contact struct {
	Name  string `yaml:"name" json:"name"`
	Phone string `yaml:"phone" json:"phone"`
	Email string `yaml:"email" json:"email"`
}

// ContactKey normalizes a contact name for case-insensitive lookup.
func ContactKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
