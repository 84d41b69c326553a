// Package options validates option sets shared by several packages.
package options

import (
	"strings"

	"github.com/erraggy/oasweave/oaserrors"
)

// Source is one way of supplying an input and whether the caller used it.
type Source struct {
	Name string
	Set  bool
}

// SingleSource ensures exactly one of sources is set and returns its name.
// The error is a *oaserrors.ConfigError for option. Its message lists the
// choices when none is set and the conflicting names when several are.
func SingleSource(option string, sources ...Source) (string, error) {
	names := make([]string, 0, len(sources))
	var set []string
	for _, s := range sources {
		names = append(names, s.Name)
		if s.Set {
			set = append(set, s.Name)
		}
	}

	switch len(set) {
	case 1:
		return set[0], nil
	case 0:
		return "", &oaserrors.ConfigError{Option: option, Message: "exactly one of " + orList(names) + " must be provided"}
	default:
		return "", &oaserrors.ConfigError{
			Option:  option,
			Message: "only one of " + orList(names) + " may be provided, got " + strings.Join(set, " and "),
		}
	}
}

func orList(names []string) string {
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
