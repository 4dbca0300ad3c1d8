package procmaps

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultFilter keeps executable, file-backed mappings: the code modules a
// symbolizer can do something with.
const DefaultFilter = `exec && file`

// Filter selects mappings with a boolean expr-lang expression.
//
// Available variables: start, end, size, offset, inode (int), path, name, dev
// (string), read, write, exec, private, file, deleted (bool).
type Filter struct {
	program *vm.Program
	rawExpr string
}

// filterEnv is the type-checking environment for filter expressions.
func filterEnv() map[string]interface{} {
	return map[string]interface{}{
		"start":   uint64(0),
		"end":     uint64(0),
		"size":    uint64(0),
		"offset":  uint64(0),
		"inode":   uint64(0),
		"path":    "",
		"name":    "",
		"dev":     "",
		"read":    false,
		"write":   false,
		"exec":    false,
		"private": false,
		"file":    false,
		"deleted": false,
	}
}

// NewFilter compiles exprStr. An empty expression uses DefaultFilter.
func NewFilter(exprStr string) (*Filter, error) {
	if exprStr == "" {
		exprStr = DefaultFilter
	}

	program, err := expr.Compile(exprStr, expr.Env(filterEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression %q: %w", exprStr, err)
	}

	return &Filter{
		program: program,
		rawExpr: exprStr,
	}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.rawExpr
}

// Match evaluates the filter for one mapping.
func (f *Filter) Match(m *Mapping) (bool, error) {
	env := map[string]interface{}{
		"start":   m.Start,
		"end":     m.End,
		"size":    m.Size(),
		"offset":  m.Offset,
		"inode":   m.Inode,
		"path":    m.Path,
		"name":    m.Name(),
		"dev":     m.Dev,
		"read":    m.Read,
		"write":   m.Write,
		"exec":    m.Exec,
		"private": m.Private,
		"file":    m.IsFile(),
		"deleted": m.Deleted,
	}

	output, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter %q: %w", f.rawExpr, err)
	}

	keep, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T, want bool", f.rawExpr, output)
	}
	return keep, nil
}

// Apply returns the mappings that match, in order. A mapping whose evaluation
// fails is dropped and the error is reported alongside the others.
func (f *Filter) Apply(maps []Mapping) ([]Mapping, []error) {
	var kept []Mapping
	var errs []error
	for i := range maps {
		keep, err := f.Match(&maps[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if keep {
			kept = append(kept, maps[i])
		}
	}
	return kept, errs
}
