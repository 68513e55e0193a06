package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/leapstack-labs/genseries/pkg/core"
	"github.com/leapstack-labs/genseries/pkg/dialect"
)

// Renderer accumulates SQL text and bound arguments for one statement.
// The first error raised while rendering sticks; later writes are ignored.
type Renderer struct {
	d      *dialect.Dialect
	buf    strings.Builder
	args   []any
	scopes []*scope
	nextID int
	err    error
}

// scope is one SELECT level: the alias its source is bound to and the names
// a column reference can resolve to.
type scope struct {
	alias       string
	columns     []Column
	annotations map[string]Expr
}

// NewRenderer creates a renderer for the dialect.
func NewRenderer(d *dialect.Dialect) *Renderer {
	return &Renderer{d: d}
}

// Dialect returns the dialect being rendered.
func (r *Renderer) Dialect() *dialect.Dialect { return r.d }

// String returns the SQL written so far.
func (r *Renderer) String() string { return r.buf.String() }

// Args returns the bound arguments in placeholder order.
func (r *Renderer) Args() []any { return r.args }

// Err returns the first rendering error.
func (r *Renderer) Err() error { return r.err }

// Fail records err unless an earlier error is already recorded.
func (r *Renderer) Fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Write appends raw SQL text.
func (r *Renderer) Write(s string) {
	if r.err != nil {
		return
	}
	r.buf.WriteString(s)
}

// Writef appends formatted SQL text.
func (r *Renderer) Writef(format string, a ...any) {
	r.Write(fmt.Sprintf(format, a...))
}

// Ident writes a quoted identifier.
func (r *Renderer) Ident(name string) {
	r.Write(r.d.QuoteIdentifier(name))
}

// Arg binds v and writes its placeholder.
func (r *Renderer) Arg(v any) {
	if r.err != nil {
		return
	}
	r.args = append(r.args, bindValue(v))
	r.buf.WriteString(r.d.FormatPlaceholder(len(r.args)))
}

// CastArg binds v and writes its placeholder cast to the canonical type.
// An empty type writes the bare placeholder. Types the dialect binds as
// text are cast from text first.
func (r *Renderer) CastArg(v any, canonical string) {
	if canonical == "" {
		r.Arg(v)
		return
	}
	if r.d.TextParams[canonical] {
		r.Cast(canonical, func() { r.Cast(core.TypeText, func() { r.Arg(v) }) })
		return
	}
	r.Cast(canonical, func() { r.Arg(v) })
}

// Cast writes CAST(<inner> AS <type>).
func (r *Renderer) Cast(canonical string, inner func()) {
	name := r.TypeName(canonical)
	r.Write("CAST(")
	inner()
	r.Write(" AS " + name + ")")
}

// TypeName returns the dialect spelling of a canonical type, failing the
// render when the dialect lacks it.
func (r *Renderer) TypeName(canonical string) string {
	name, err := r.d.TypeName(canonical)
	if err != nil {
		r.Fail(err)
	}
	return name
}

// NewAlias allocates a table alias unique within the statement.
func (r *Renderer) NewAlias() string {
	alias := "t" + strconv.Itoa(r.nextID)
	r.nextID++
	return alias
}

func (r *Renderer) pushScope(s *scope) { r.scopes = append(r.scopes, s) }

func (r *Renderer) popScope() { r.scopes = r.scopes[:len(r.scopes)-1] }

// lookup resolves name in the scope `outer` levels above the current one.
func (r *Renderer) lookup(name string, outer int) (*scope, Column, Expr, bool) {
	i := len(r.scopes) - 1 - outer
	if i < 0 {
		return nil, Column{}, nil, false
	}
	s := r.scopes[i]
	col, found := Column{Name: name}, false
	for _, c := range s.columns {
		if c.Name == name {
			col, found = c, true
			break
		}
	}
	if e, ok := s.annotations[name]; ok {
		return s, col, e, true
	}
	return s, col, nil, found
}

// columnType returns the canonical type of name in the current scope, or ""
// when unknown.
func (r *Renderer) columnType(name string) string {
	_, col, _, ok := r.lookup(name, 0)
	if !ok {
		return ""
	}
	return col.Type
}

// writeColumn writes a reference to name resolved `outer` scopes out.
func (r *Renderer) writeColumn(name string, outer int) {
	s, col, annotation, ok := r.lookup(name, outer)
	if !ok {
		if outer > 0 && s == nil {
			r.Fail(fmt.Errorf("%w: outer reference %q used outside a subquery", ErrUnknownField, name))
			return
		}
		r.Fail(fmt.Errorf("%w: %q", ErrUnknownField, name))
		return
	}
	if annotation != nil {
		saved := r.scopes
		r.scopes = r.scopes[:len(r.scopes)-outer]
		annotation.WriteSQL(r)
		r.scopes = saved
		return
	}
	r.Write(s.alias + "." + r.d.QuoteIdentifier(col.Name))
}

// bindValue converts domain values into something every driver accepts.
func bindValue(v any) any {
	switch x := v.(type) {
	case *apd.Decimal:
		return x.String()
	case apd.Decimal:
		return x.String()
	case core.Range:
		return x.String()
	case *core.Range:
		return x.String()
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case time.Time:
		return x
	default:
		return v
	}
}
