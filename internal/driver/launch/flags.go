// Package launch holds browser launch helpers shared by the driver backends.
package launch

import "strings"

// Flag is one command line switch for a browser process.
type Flag struct {
	Name  string
	Value string
	// Bool is set for switches without "=value".
	Bool bool
}

// ParseFlags turns raw arguments such as "--headless=new" or "incognito"
// into flags with the leading dashes stripped. Blank entries are skipped.
func ParseFlags(args []string) []Flag {
	flags := make([]Flag, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			flags = append(flags, Flag{Name: name, Bool: true})
			continue
		}
		flags = append(flags, Flag{Name: name, Value: value})
	}
	return flags
}
