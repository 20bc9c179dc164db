package watcher

import "strings"

const separators = `/\`

// NormalizeWatchPath strips trailing separators from path. A bare root keeps
// exactly one trailing separator: "/", "C:\" and "\\server\share\" are
// returned with it, since some watch backends cannot arm a root without it.
func NormalizeWatchPath(path string) string {
	trimmed := strings.TrimRight(path, separators)
	if trimmed == path {
		return path
	}

	switch {
	case trimmed == "":
		return path[:1]
	case isDriveRoot(trimmed), isUNCRoot(trimmed):
		return path[:len(trimmed)+1]
	}
	return trimmed
}

func isDriveRoot(p string) bool {
	if len(p) != 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isUNCRoot(p string) bool {
	if !strings.HasPrefix(p, `\\`) && !strings.HasPrefix(p, "//") {
		return false
	}
	parts := strings.FieldsFunc(p[2:], func(r rune) bool { return r == '/' || r == '\\' })
	return len(parts) == 2
}
