// Package flagx parses option flags out of free-form argument lists, such as
// the words typed after a REPL command.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns a slice of arguments that only contains the allowed
// flags (and their values) specified in allowedFlags.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -page 2
//  2. Flag and value combined with '=':      --page=2
//
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			// a following token that is not itself a flag is the value
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// Positional returns the arguments that are neither allowed flags nor the
// values consumed by them, preserving order.
func Positional(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			if _, ok := allowed[strings.SplitN(arg, "=", 2)[0]]; ok {
				continue
			}
		}
		if _, ok := allowed[arg]; ok {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}

// ParseIntOptions fills the integer options named in opts from args. Each
// option is accepted as -name or --name. Unknown tokens are left alone and
// returned as positional arguments. Values already stored behind the
// pointers act as defaults.
func ParseIntOptions(args []string, opts map[string]*int) ([]string, error) {
	allowed := make([]string, 0, len(opts)*2)
	for name := range opts {
		allowed = append(allowed, "-"+name, "--"+name)
	}

	fs := flag.NewFlagSet("command", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for name, p := range opts {
		fs.IntVar(p, name, *p, "")
	}

	if err := fs.Parse(FilterArgs(args, allowed)); err != nil {
		return nil, err
	}

	return Positional(args, allowed), nil
}
