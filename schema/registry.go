package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Registry maps table names to registered tables. Registration is
// write-once per table and guarded by a mutex; lookups after
// registration are read-locked and never mutate.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register registers a row type on the process-wide registry.
func Register(v any) (*Table, error) { return defaultRegistry.Register(v) }

// RegisterTable adds a pre-built table to the process-wide registry.
func RegisterTable(t *Table) error { return defaultRegistry.RegisterTable(t) }

// RegisterTables adds a group of pre-built tables to the process-wide
// registry in one step.
func RegisterTables(ts ...*Table) error { return defaultRegistry.RegisterTables(ts...) }

// Lookup finds a table by name on the process-wide registry.
func Lookup(name string) (*Table, bool) { return defaultRegistry.Lookup(name) }

// Reset drops all registered tables. Test harness use only.
func Reset() { defaultRegistry.Reset() }

// MustRegister is Register that panics on a declaration error.
func MustRegister(v any) *Table {
	t, err := Register(v)
	if err != nil {
		panic(err)
	}
	return t
}

// Register reflects over a struct type and registers one table per
// declared row type. Exported fields become columns in declaration
// order; the `sqlz` struct tag carries column options:
//
//	Name  string `sqlz:"primary"`
//	ID    int64  `sqlz:"primary,auto"`
//	Email string `sqlz:"unique,notnull"`
//	Dept  int64  `sqlz:"references=Department.id,on_delete=CASCADE"`
//	Note  string `sqlz:"name=remark,default=''"`
//	Age   int64  `sqlz:"check=age > 10"`
//	Skip  string `sqlz:"-"`
func (r *Registry) Register(v any) (*Table, error) {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, &Error{Msg: fmt.Sprintf("cannot register %T: not a struct", v)}
	}

	name := rt.Name()
	cols := make([]*Column, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		col, err := columnFromField(name, f)
		if err != nil {
			return nil, err
		}
		if col != nil {
			cols = append(cols, col)
		}
	}
	t, err := NewTable(name, cols)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterTable(t); err != nil {
		return nil, err
	}
	return t, nil
}

// RegisterTable adds a pre-built table, validating its foreign keys
// against the tables already present. A foreign key may only target a
// previously registered table (or the table itself); use RegisterTables
// to load a group of mutually referencing tables.
func (r *Registry) RegisterTable(t *Table) error {
	return r.RegisterTables(t)
}

// RegisterTables adds a group of pre-built tables in one step. Foreign
// keys may target any member of the group regardless of declaration
// order, so mutually referencing tables load cleanly; a cycle of
// foreign keys within the group is an error. The whole group is
// validated before any table is committed.
func (r *Registry) RegisterTables(ts ...*Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]*Table, len(ts))
	for _, t := range ts {
		if _, exists := r.tables[t.Name]; exists {
			return &Error{Table: t.Name, Msg: "already registered"}
		}
		if _, dup := batch[t.Name]; dup {
			return &Error{Table: t.Name, Msg: "already registered"}
		}
		batch[t.Name] = t
	}
	for _, t := range ts {
		for _, c := range t.Columns {
			fk := c.ForeignKey
			if fk == nil {
				continue
			}
			target := r.tables[fk.Table]
			if target == nil {
				target = batch[fk.Table]
			}
			if target == nil {
				return &Error{Table: t.Name, Msg: fmt.Sprintf("column %q references unregistered table %q", c.Name, fk.Table)}
			}
			if _, ok := target.Column(fk.Column); !ok {
				return &Error{Table: t.Name, Msg: fmt.Sprintf("column %q references unknown column %s.%s", c.Name, fk.Table, fk.Column)}
			}
		}
	}
	for _, t := range ts {
		if cycle := r.fkCycleFrom(t, batch); cycle != "" {
			return &Error{Table: t.Name, Msg: "foreign-key cycle: " + cycle}
		}
	}
	for _, t := range ts {
		r.tables[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return nil
}

// fkCycleFrom walks the foreign-key graph, with the batch provisionally
// added, and reports a cycle passing through more than one table.
// Registry lock held by the caller.
func (r *Registry) fkCycleFrom(t *Table, batch map[string]*Table) string {
	edges := func(name string) []string {
		tab := r.tables[name]
		if tab == nil {
			tab = batch[name]
		}
		if tab == nil {
			return nil
		}
		var out []string
		for _, c := range tab.Columns {
			if c.ForeignKey != nil && c.ForeignKey.Table != name {
				out = append(out, c.ForeignKey.Table)
			}
		}
		return out
	}

	var path []string
	onPath := map[string]bool{}
	var visit func(name string) string
	visit = func(name string) string {
		if onPath[name] {
			return strings.Join(append(path, name), " -> ")
		}
		onPath[name] = true
		path = append(path, name)
		for _, next := range edges(name) {
			if c := visit(next); c != "" {
				return c
			}
		}
		path = path[:len(path)-1]
		onPath[name] = false
		return ""
	}
	return visit(t.Name)
}

// Lookup finds a registered table by name.
func (r *Registry) Lookup(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns all registered tables in registration order.
func (r *Registry) Tables() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name])
	}
	return out
}

// Reset drops all registered tables. Test harness use only.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables = make(map[string]*Table)
	r.order = nil
}

var timeType = reflect.TypeOf(time.Time{})

func columnFromField(table string, f reflect.StructField) (*Column, error) {
	tag := f.Tag.Get("sqlz")
	if tag == "-" {
		return nil, nil
	}

	ft := f.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	typ, err := typeOf(ft)
	if err != nil {
		return nil, &Error{Table: table, Msg: fmt.Sprintf("field %s: %v", f.Name, err)}
	}

	col := &Column{
		Name:    toSnake(f.Name),
		GoField: f.Name,
		Type:    typ,
	}
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		key, val, _ := strings.Cut(opt, "=")
		switch key {
		case "primary":
			col.PrimaryKey = true
		case "auto":
			col.AutoIncrement = true
		case "unique":
			col.Unique = true
		case "notnull":
			col.NotNull = true
		case "name":
			col.Name = val
		case "check":
			// The expression is passed through to the DDL verbatim.
			// Tag options split on commas, so an expression containing
			// one must come through the DSL instead.
			col.Check = val
		case "default":
			dv, err := parseDefault(val, typ)
			if err != nil {
				return nil, &Error{Table: table, Msg: fmt.Sprintf("field %s: %v", f.Name, err)}
			}
			col.HasDefault = true
			col.Default = dv
		case "references":
			refTable, refCol, ok := strings.Cut(val, ".")
			if !ok || refTable == "" || refCol == "" {
				return nil, &Error{Table: table, Msg: fmt.Sprintf("field %s: bad references %q, want Table.column", f.Name, val)}
			}
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKey{}
			}
			col.ForeignKey.Table = refTable
			col.ForeignKey.Column = refCol
		case "on_delete":
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKey{}
			}
			col.ForeignKey.OnDelete = val
		case "on_update":
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKey{}
			}
			col.ForeignKey.OnUpdate = val
		default:
			return nil, &Error{Table: table, Msg: fmt.Sprintf("field %s: unknown tag option %q", f.Name, key)}
		}
	}
	if col.ForeignKey != nil && col.ForeignKey.Table == "" {
		return nil, &Error{Table: table, Msg: fmt.Sprintf("field %s: on_delete/on_update without references", f.Name)}
	}
	return col, nil
}

func typeOf(t reflect.Type) (Type, error) {
	if t == timeType {
		return TypeTimestamp, nil
	}
	switch t.Kind() {
	case reflect.String:
		return TypeText, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger, nil
	case reflect.Float32, reflect.Float64:
		return TypeReal, nil
	case reflect.Bool:
		return TypeBoolean, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return TypeBlob, nil
		}
	}
	return TypeText, fmt.Errorf("unsupported column type %s", t)
}

func parseDefault(val string, typ Type) (any, error) {
	switch typ {
	case TypeInteger:
		return strconv.ParseInt(val, 10, 64)
	case TypeReal:
		return strconv.ParseFloat(val, 64)
	case TypeBoolean:
		return strconv.ParseBool(val)
	default:
		return strings.Trim(val, "'"), nil
	}
}

// toSnake converts a Go field name to its column name: DeptID becomes
// dept_id, Name becomes name. Runs of capitals collapse into one word.
func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
