package params

import "strings"

// PathSeparator joins path components in the dotted form.
const PathSeparator = "."

// Path locates a node from the root of a module's parameter subtree.
type Path []string

// ParsePath splits a dotted path. Empty components are dropped.
func ParsePath(s string) Path {
	var p Path
	for _, part := range strings.Split(s, PathSeparator) {
		if part != "" {
			p = append(p, part)
		}
	}
	return p
}

func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Child returns a new path extended by name. The receiver is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = name
	return out
}

// Last returns the terminal component, or "" for the empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Resolver maps a leaf path to the command name used on the wire.
type Resolver func(Path) string

// ResolveCommandName returns the last path component.
//
// Two leaves that share a terminal name within one module resolve to the
// same command. The remote side's disambiguation rules are not known, so
// such collisions are reported by FindCollisions rather than rewritten.
func ResolveCommandName(path Path) string {
	return path.Last()
}

// Collision lists the paths that resolve to one command name.
type Collision struct {
	Command string
	Paths   []Path
}

// FindCollisions groups descriptors by resolved command name and returns every
// name claimed by more than one path, in order of first appearance.
func FindCollisions(descs []Descriptor, resolve Resolver) []Collision {
	if resolve == nil {
		resolve = ResolveCommandName
	}
	byName := make(map[string][]Path)
	var order []string
	for _, d := range descs {
		name := resolve(d.Path)
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = append(byName[name], d.Path)
	}

	var out []Collision
	for _, name := range order {
		if paths := byName[name]; len(paths) > 1 {
			out = append(out, Collision{Command: name, Paths: paths})
		}
	}
	return out
}
