package avro

import (
	"regexp"
	"strings"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// name holds a named schema's identity: the name as declared, its
// enclosing namespace (possibly empty), and the derived full name.
type name struct {
	simple    string
	namespace string
	full      string
}

// newName validates simpleName and namespace per the Avro name grammar
// and resolves simpleName against enclosingNamespace when simpleName is
// itself unqualified (contains no dot).
func newName(simpleName, namespace, enclosingNamespace string) (name, error) {
	if strings.Contains(simpleName, ".") {
		// A qualified name: split into namespace + simple name, the
		// declared namespace attribute (if any) is ignored per the
		// Avro spec when the name itself carries a namespace.
		idx := strings.LastIndex(simpleName, ".")
		ns := simpleName[:idx]
		simple := simpleName[idx+1:]
		if err := validateNamespace(ns); err != nil {
			return name{}, err
		}
		if !identRe.MatchString(simple) {
			return name{}, &InvalidNameError{Name: simpleName}
		}
		return name{simple: simple, namespace: ns, full: simpleName}, nil
	}

	if !identRe.MatchString(simpleName) {
		return name{}, &InvalidNameError{Name: simpleName}
	}

	ns := namespace
	if ns == "" {
		ns = enclosingNamespace
	}
	if ns != "" {
		if err := validateNamespace(ns); err != nil {
			return name{}, err
		}
		return name{simple: simpleName, namespace: ns, full: ns + "." + simpleName}, nil
	}
	return name{simple: simpleName, full: simpleName}, nil
}

func validateNamespace(ns string) error {
	for _, part := range strings.Split(ns, ".") {
		if !identRe.MatchString(part) {
			return &InvalidNameError{Name: ns}
		}
	}
	return nil
}

func validSymbol(s string) bool {
	return identRe.MatchString(s)
}

// Name returns the schema's unqualified name.
func (n name) Name() string { return n.simple }

// Namespace returns the schema's namespace, or "" if none.
func (n name) Namespace() string { return n.namespace }

// FullName returns "namespace.name", or just "name" when there is no
// namespace.
func (n name) FullName() string { return n.full }
