package domain

// AppKind identifies how an indexed application is launched.
type AppKind string

const (
	AppKindExecutable AppKind = "exe"
	AppKindShortcut   AppKind = "lnk"
	AppKindDesktop    AppKind = "desktop"
	AppKindBundle     AppKind = "bundle"
)

// AppEntry is one application discovered by the app index.
type AppEntry struct {
	Key     string  `json:"key"`
	Display string  `json:"display"`
	Kind    AppKind `json:"kind"`
	Path    string  `json:"path"`
}
