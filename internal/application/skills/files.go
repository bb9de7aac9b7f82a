package skills

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
)

var fileOps = []struct {
	verb    string
	pattern *regexp.Regexp
}{
	{verb: "create", pattern: regexp.MustCompile(`(?i)\bcreate\s+(?:a\s+)?(?:file\s+)?(\S+)`)},
	{verb: "delete", pattern: regexp.MustCompile(`(?i)\bdelete\s+(?:the\s+)?(?:file\s+)?(\S+)`)},
	{verb: "read", pattern: regexp.MustCompile(`(?i)\bread\s+(?:the\s+)?(?:file\s+)?(\S+)`)},
	{verb: "open", pattern: regexp.MustCompile(`(?i)\bopen\s+(?:the\s+)?(?:file\s+)?(\S+)`)},
}

const fileUsage = "Commands: 'create file X', 'delete file X', 'read file X', 'open file X'"

func (s *Skills) fileOperation(ctx context.Context, req registry.Request) (domain.Result, error) {
	for _, op := range fileOps {
		m := op.pattern.FindStringSubmatch(req.Text)
		if m == nil {
			continue
		}
		name := m[1]
		if strings.EqualFold(name, "file") {
			break
		}
		path, ok := s.resolveFile(name)
		if !ok {
			return domain.Failure(fmt.Sprintf("Only files inside %s can be used.", s.baseDir())), nil
		}
		switch op.verb {
		case "create":
			return s.createFile(name, path), nil
		case "delete":
			return s.deleteFile(name, path), nil
		case "read":
			return s.readFile(name, path), nil
		case "open":
			return s.openFile(ctx, name, path), nil
		}
	}
	return domain.Failure(fileUsage), nil
}

func (s *Skills) baseDir() string {
	if s.deps.Config.Files.BaseDir == "" {
		return "."
	}
	return s.deps.Config.Files.BaseDir
}

// resolveFile maps a spoken file name to a path inside the base directory.
func (s *Skills) resolveFile(name string) (string, bool) {
	if filepath.IsAbs(name) {
		return "", false
	}
	base := s.baseDir()
	path := filepath.Join(base, filepath.Clean(name))
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

func (s *Skills) createFile(name, path string) domain.Result {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Failure(fmt.Sprintf("File error: %v", err))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Failure(fmt.Sprintf("File error: %v", err))
	}
	if err := f.Close(); err != nil {
		return domain.Failure(fmt.Sprintf("File error: %v", err))
	}
	return domain.Success(fmt.Sprintf("Created '%s'", name))
}

func (s *Skills) deleteFile(name, path string) domain.Result {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Failure(fmt.Sprintf("File '%s' not found", name))
		}
		return domain.Failure(fmt.Sprintf("File error: %v", err))
	}
	return domain.Success(fmt.Sprintf("Deleted '%s'", name))
}

func (s *Skills) readFile(name, path string) domain.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Failure(fmt.Sprintf("File '%s' not found", name))
		}
		return domain.Failure(fmt.Sprintf("File error: %v", err))
	}
	if !utf8.Valid(data) {
		return domain.Failure(fmt.Sprintf("Cannot read '%s' (binary/not text)", name))
	}
	content := []rune(string(data))
	limit := s.deps.Config.GetPreviewLength()
	preview := string(content)
	if len(content) > limit {
		preview = string(content[:limit]) + "..."
	}
	return domain.Success(fmt.Sprintf("%s:\n%s", name, preview))
}

func (s *Skills) openFile(ctx context.Context, name, path string) domain.Result {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Failure(fmt.Sprintf("File '%s' not found", name))
		}
		return domain.Failure(fmt.Sprintf("File error: %v", err))
	}
	if err := s.deps.Executor.OpenPath(ctx, path); err != nil {
		return domain.Failure(fmt.Sprintf("Open failed: %v", err))
	}
	return domain.Success(fmt.Sprintf("Opening '%s'", name))
}
