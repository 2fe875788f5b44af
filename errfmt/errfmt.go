// Package errfmt flattens structured error values into ordered,
// human-readable, optionally localized strings.
//
// The input is a sequence of Nodes - an explicit tagged union of the
// error shapes a persistence layer produces: nested validation trees,
// structured not-found records, plain messages, and opaque values that
// pass through untouched. The output is one linear sequence: strings for
// everything renderable, and the original value for every Opaque node.
//
// Field iteration inside a Tree is in sorted field-name order. Go maps
// have no iteration order, so the sorted order is the deterministic,
// observable contract of this package.
package errfmt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crudo-dev/crudo/translate"
)

// Node is one failure to be rendered as user-facing text.
type Node interface {
	node()
}

// Entry is one per-field error entry inside a Tree: a Message, a nested
// *Tree for a has-one association, or Trees for a to-many association.
type Entry interface {
	entry()
}

// Message is a validation message template with named parameters.
// Every occurrence of %{name} in the template is replaced with the
// stringified parameter value after the translation lookup.
type Message struct {
	Template string
	Params   map[string]any
}

func (Message) entry() {}

// Msg returns a parameterless Message entry.
func Msg(template string) Message {
	return Message{Template: template}
}

// Tree is a nested validation-error tree: a mapping from field name to
// the field's error entries. Trees mirror parent/child data relationships;
// an associated record's errors nest as an entry under the association's
// field name.
type Tree struct {
	Fields map[string][]Entry
}

func (*Tree) node()  {}
func (*Tree) entry() {}

// NewTree returns an empty validation tree.
func NewTree() *Tree {
	return &Tree{Fields: make(map[string][]Entry)}
}

// Add appends an entry to the given field.
func (t *Tree) Add(field string, e Entry) *Tree {
	if t.Fields == nil {
		t.Fields = make(map[string][]Entry)
	}
	t.Fields[field] = append(t.Fields[field], e)
	return t
}

// Trees is a to-many association entry: one nested tree per failed
// associated record.
type Trees []*Tree

func (Trees) entry() {}

// NotFound is a structured "record not found" error. Message is translated
// under the errors domain and Schema, acting as the field name, under the
// schemas domain.
type NotFound struct {
	Message string
	Schema  string
}

func (NotFound) node() {}

// Text is a plain message string.
type Text string

func (Text) node() {}

// Opaque is any other value. It is emitted unmodified and never translated.
type Opaque struct {
	Value any
}

func (Opaque) node() {}

// Wrap classifies an arbitrary value as a Node. Nodes pass through,
// strings become Text, and anything unrecognized becomes Opaque.
func Wrap(v any) Node {
	switch t := v.(type) {
	case Node:
		return t
	case string:
		return Text(t)
	default:
		return Opaque{Value: v}
	}
}

// Flatten renders the given nodes into one linear sequence, preserving
// input order. Strings are produced for every renderable node; Opaque
// values are passed through as-is. The translator may be nil, in which
// case the identity translator is used; a panicking translator falls
// back to identity rather than propagating the failure.
func Flatten(nodes []Node, tr translate.Func) []any {
	tr = translate.Safe(tr)
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		switch t := n.(type) {
		case *Tree:
			for _, r := range flattenTree(t, tr) {
				out = append(out, r.text)
			}
		case NotFound:
			schema := tr(translate.DomainSchemas, t.Schema, nil)
			msg := tr(translate.DomainErrors, t.Message, nil)
			out = append(out, schema+" "+msg)
		case Text:
			if t == "" {
				out = append(out, "")
				continue
			}
			out = append(out, tr(translate.DomainErrors, string(t), nil))
		case Opaque:
			out = append(out, t.Value)
		}
	}
	return out
}

// rendered is one flattened string plus whether it came out of a nested
// association. Strings that already carry an association prefix propagate
// through further nesting levels unchanged, so multi-level nesting
// collapses to a single "field: message" prefix.
type rendered struct {
	text   string
	nested bool
}

func flattenTree(t *Tree, tr translate.Func) []rendered {
	if t == nil {
		return nil
	}
	fields := make([]string, 0, len(t.Fields))
	for f := range t.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var out []rendered
	for _, f := range fields {
		for _, e := range t.Fields[f] {
			switch entry := e.(type) {
			case Message:
				name := tr(translate.DomainSchemas, f, nil)
				msg := interpolate(tr(translate.DomainErrors, entry.Template, entry.Params), entry.Params)
				out = append(out, rendered{text: name + " " + msg})
			case *Tree:
				for _, r := range flattenTree(entry, tr) {
					out = append(out, prefixed(f, r, tr))
				}
			case Trees:
				for _, child := range entry {
					for _, r := range flattenTree(child, tr) {
						out = append(out, prefixed(f, r, tr))
					}
				}
			}
		}
	}
	return out
}

// prefixed wraps one rendered string of an immediate child. Only the
// child's own concrete messages receive the association prefix; strings
// that already came from a deeper association keep their single prefix.
func prefixed(field string, r rendered, tr translate.Func) rendered {
	if r.nested {
		return r
	}
	name := tr(translate.DomainSchemas, field, nil)
	return rendered{text: name + ": " + r.text, nested: true}
}

// interpolate replaces every occurrence of %{name} with the stringified
// parameter value, for every parameter present. It runs after the
// translation lookup, so a failed lookup can never leave a half
// interpolated template behind.
func interpolate(template string, params map[string]any) string {
	if len(params) == 0 {
		return template
	}
	s := template
	for k, v := range params {
		s = strings.ReplaceAll(s, "%{"+k+"}", fmt.Sprint(v))
	}
	return s
}
