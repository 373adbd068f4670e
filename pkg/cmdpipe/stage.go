package cmdpipe

import (
	"fmt"
	"regexp"
	"strings"
)

// envAssignRe matches a leading NAME=VALUE argument, e.g. "FOO=bar". Only
// alphanumeric-and-underscore names count, matching the original's
// all(char::is_ascii_alphanumeric || '_') check.
var envAssignRe = regexp.MustCompile(`^([A-Za-z0-9_]+)=(.*)$`)

// Stage is one command in a Pipeline: either an external process (name +
// argv + envs + redirects) or a registered builtin identified by its first
// argument. It is mutable during construction via AddArg/AddArgs/AddRedirect,
// then frozen the moment it is spawned.
type Stage struct {
	argv      []string
	envs      map[string]string
	redirects []Redirect

	// isBuiltin is fixed at the moment the first non-env argument is added.
	// Later Register calls never change an already-constructed stage.
	isBuiltin bool
}

// NewStage returns an empty Stage ready for AddArg/AddArgs/AddRedirect calls.
func NewStage() *Stage {
	return &Stage{envs: make(map[string]string)}
}

// AddArg adds one token to the stage. While argv is still empty, a token
// matching NAME=VALUE is peeled into envs instead of becoming argv[0]; the
// first real argument fixes whether the stage resolves to a builtin.
// Returns the Stage for chaining.
func (s *Stage) AddArg(arg string) *Stage {
	if len(s.argv) == 0 {
		if m := envAssignRe.FindStringSubmatch(arg); m != nil {
			s.envs[m[1]] = m[2]
			return s
		}
		s.isBuiltin = globalRegistry.has(arg)
	}
	s.argv = append(s.argv, arg)
	return s
}

// AddArgs applies AddArg to each element of args in order.
func (s *Stage) AddArgs(args ...string) *Stage {
	for _, a := range args {
		s.AddArg(a)
	}
	return s
}

// AddRedirect appends a redirect directive, applied in declaration order by
// the redirect planner at spawn time.
func (s *Stage) AddRedirect(r Redirect) *Stage {
	s.redirects = append(s.redirects, r)
	return s
}

// arg0 returns the stage's first argument, or "" if none have been added yet
// (an empty stage resolves to the registered "" builtin, a no-op success).
func (s *Stage) arg0() string {
	if len(s.argv) == 0 {
		return ""
	}
	return s.argv[0]
}

// DebugString renders the stage as "[arg0, arg1, ...]" optionally followed
// by "(envs, redirects)", matching the external-interfaces debug contract.
func (s *Stage) DebugString() string {
	quoted := make([]string, len(s.argv))
	for i, a := range s.argv {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	out := "[" + strings.Join(quoted, ", ") + "]"

	var extras []string
	if len(s.envs) > 0 {
		extras = append(extras, envsDebugString(s.envs))
	}
	if len(s.redirects) > 0 {
		parts := make([]string, len(s.redirects))
		for i, r := range s.redirects {
			parts[i] = r.String()
		}
		extras = append(extras, "["+strings.Join(parts, ", ")+"]")
	}
	if len(extras) > 0 {
		out += "(" + strings.Join(extras, ", ") + ")"
	}
	return out
}

func envsDebugString(envs map[string]string) string {
	keys := make([]string, 0, len(envs))
	for k := range envs {
		keys = append(keys, k)
	}
	// Sorted for deterministic debug/test output; map iteration order is not
	// part of any external contract here.
	sortStrings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%q: %q", k, envs[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
