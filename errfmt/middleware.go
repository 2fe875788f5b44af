package errfmt

import (
	"errors"
	"strings"

	"github.com/crudo-dev/crudo"
	"github.com/crudo-dev/crudo/translate"
)

// TreeError carries a validation Tree through a Go error value, so the
// persistence layer can return field-level failures as ordinary errors
// and have them flattened at the edge.
type TreeError struct {
	Tree *Tree
	// Cause is the underlying driver error, if any.
	Cause error
}

// Unwrap returns the underlying cause.
func (e *TreeError) Unwrap() error {
	return e.Cause
}

// Error renders the tree through the identity translator.
func (e *TreeError) Error() string {
	if e.Tree == nil || len(e.Tree.Fields) == 0 {
		if e.Cause != nil {
			return "validation failed: " + e.Cause.Error()
		}
		return "validation failed"
	}
	parts := Flatten([]Node{e.Tree}, nil)
	msgs := make([]string, len(parts))
	for i, p := range parts {
		msgs[i], _ = p.(string)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// FromError classifies a Go error value as a Node. Not-found errors become
// structured NotFound nodes, tree-carrying errors expose their trees, and
// everything else is rendered as a plain message.
func FromError(err error) Node {
	var te *TreeError
	if errors.As(err, &te) {
		return te.Tree
	}
	var nf *crudo.NotFoundError
	if errors.As(err, &nf) {
		return NotFound{Message: "not found", Schema: strings.ToLower(nf.Schema())}
	}
	var st *crudo.StaleError
	if errors.As(err, &st) {
		return NotFound{Message: "is stale", Schema: strings.ToLower(st.Schema())}
	}
	return Text(err.Error())
}

// Translate is the error-translation middleware: it converts the given
// operation errors into a flattened, optionally localized message list.
func Translate(tr translate.Func, errs ...error) []any {
	nodes := make([]Node, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		nodes = append(nodes, FromError(err))
	}
	return Flatten(nodes, tr)
}
