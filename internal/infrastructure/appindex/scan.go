package appindex

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
)

const maxScanDepth = 4

// scanDir adds every application found under dir. The first entry for a key wins.
func scanDir(ctx context.Context, dir string, into map[string]domain.AppEntry) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	root := filepath.Clean(dir)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if d.IsDir() {
			if ext == ".app" {
				add(into, strings.TrimSuffix(name, filepath.Ext(name)), domain.AppKindBundle, path)
				return fs.SkipDir
			}
			if depth(root, path) > maxScanDepth {
				return fs.SkipDir
			}
			return nil
		}
		switch ext {
		case ".desktop":
			if display, exec, ok := parseDesktopEntry(path); ok {
				add(into, display, domain.AppKindDesktop, exec)
			}
		case ".lnk":
			add(into, strings.TrimSuffix(name, filepath.Ext(name)), domain.AppKindShortcut, path)
		case ".exe":
			add(into, strings.TrimSuffix(name, filepath.Ext(name)), domain.AppKindExecutable, path)
		}
		return nil
	})
}

func add(into map[string]domain.AppEntry, display string, kind domain.AppKind, path string) {
	key := normalize(display)
	if key == "" || path == "" {
		return
	}
	if _, exists := into[key]; exists {
		return
	}
	into[key] = domain.AppEntry{Key: key, Display: strings.TrimSpace(display), Kind: kind, Path: path}
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// parseDesktopEntry reads Name and Exec from the [Desktop Entry] group of a
// freedesktop .desktop file. Hidden entries are skipped.
func parseDesktopEntry(path string) (display, command string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer f.Close()

	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			if display == "" {
				display = strings.TrimSpace(value)
			}
		case "Exec":
			command = execBinary(value)
		case "NoDisplay", "Hidden":
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				return "", "", false
			}
		}
	}
	return display, command, display != "" && command != ""
}

// execBinary returns the program of an Exec line, dropping field codes and
// an `env VAR=x` prefix.
func execBinary(value string) string {
	fields := strings.Fields(value)
	for len(fields) > 0 {
		f := strings.Trim(fields[0], `"`)
		switch {
		case f == "env", strings.Contains(f, "="), strings.HasPrefix(f, "%"):
			fields = fields[1:]
			continue
		}
		return f
	}
	return ""
}
