// Package filter selects directory entries by regular expression.
package filter

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/dimasma0305/filelist/internal/filelist/errors"
)

// Regex engine names
const (
	EngineRE2  = "re2"
	EnginePCRE = "pcre"
)

const caseInsensitiveFlag = "(?i)"

// Options control a single filter pass
type Options struct {
	Pattern       string
	CaseSensitive bool
	FullPath      bool
	BaseDir       string
	Engine        string
}

type matcher func(name string) (bool, error)

// Apply returns the names the pattern finds a match in, anywhere in the
// name, in their original order. The pattern is compiled on every call.
func Apply(names []string, opts Options) ([]string, error) {
	match, err := compile(opts)
	if err != nil {
		return nil, err
	}

	prefix := ""
	if opts.FullPath {
		prefix = NormalizeBase(opts.BaseDir) + "/"
	}

	kept := make([]string, 0, len(names))
	for _, name := range names {
		ok, err := match(name)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPattern, "match %q against %q: %v", opts.Pattern, name, err)
		}
		if !ok {
			continue
		}
		kept = append(kept, prefix+name)
	}
	return kept, nil
}

func compile(opts Options) (matcher, error) {
	pattern := opts.Pattern
	if !opts.CaseSensitive {
		pattern = caseInsensitiveFlag + pattern
	}

	switch opts.Engine {
	case "", EngineRE2:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPattern, "%q: %v", opts.Pattern, err)
		}
		return func(name string) (bool, error) {
			return re.MatchString(name), nil
		}, nil

	case EnginePCRE:
		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPattern, "%q: %v", opts.Pattern, err)
		}
		return re.MatchString, nil

	default:
		return nil, errors.Wrapf(errors.ErrInvalidPattern, "unknown regex engine %q", opts.Engine)
	}
}

// NormalizeBase converts every path separator in dir to '/' and drops
// trailing separators, so the root directory normalizes to "".
func NormalizeBase(dir string) string {
	normalized := strings.ReplaceAll(dir, `\`, "/")
	return strings.TrimRight(normalized, "/")
}
