// Package gentest generates table-driven Go tests from explored paths.
//
// Every realized path becomes a test case binding the inputs that drove it
// to the outcome observed: the failure kind of an Error path or the final
// values of the result variables of an Ok path. The generated test looks the
// target up with the Lookup function of the package registering it and runs
// it with concolic.Execute.
package gentest

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/ajalab/concolic"
	"github.com/ajalab/concolic/expr"
	"github.com/ajalab/concolic/trace"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/ast/astutil"
)

const (
	concolicPath = "github.com/ajalab/concolic"
	requirePath  = "github.com/stretchr/testify/require"
	assertPath   = "github.com/stretchr/testify/assert"
)

// reserved names the fields of the test case struct that do not hold inputs.
var reserved = map[string]bool{
	"exception": true,
	"post":      true,
}

// Generator builds the test for a single target.
type Generator struct {
	// Package is the import path of the package whose Lookup function returns the target.
	Package string
	Target  *concolic.Target

	fields   []string
	needMath bool
}

// New returns a generator for target registered in the package pkgPath.
func New(pkgPath string, target *concolic.Target) *Generator {
	fields := make([]string, len(target.Inputs))
	for i, d := range target.Inputs {
		if token.IsIdentifier(d.Name) && !reserved[d.Name] {
			fields[i] = d.Name
		} else {
			fields[i] = fmt.Sprintf("in%d", i)
		}
	}
	return &Generator{Package: pkgPath, Target: target, fields: fields}
}

// TestName returns the name of the generated test function.
func (g *Generator) TestName() string {
	name := []rune(g.Target.Name)
	var b strings.Builder
	b.WriteString("Test")
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Generate returns the AST of a test file covering the Ok and Error paths.
// Paths of other kinds carry no concrete input and are skipped.
func (g *Generator) Generate(paths []*trace.Path) (*token.FileSet, *ast.File, error) {
	g.needMath = false
	testName := g.TestName()
	testTemp := fmt.Sprintf(`
		package %s

		func %s(t *testing.T) {
			testCases := []struct{}{}
			target, ok := %s.Lookup(%q)
			require.True(t, ok)
			for i, tc := range testCases {
				t.Run(fmt.Sprintf("test%%d", i), func(t *testing.T) {
					out, err := concolic.Execute(target, map[string]interface{}{})
					require.NoError(t, err)
					assert.Equal(t, tc.exception, out.Exception)
					assert.Equal(t, tc.post, out.Post)
				})
			}
		}
	`, path.Base(g.Package)+"_test", testName, path.Base(g.Package), g.Target.Name)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", testTemp, 0)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate AST for test module")
	}

	testFuncDecl := f.Decls[0].(*ast.FuncDecl)
	testCasesExpr := testFuncDecl.Body.List[0].(*ast.AssignStmt).Rhs[0].(*ast.CompositeLit)
	testCasesType := testCasesExpr.Type.(*ast.ArrayType).Elt.(*ast.StructType)
	for i, d := range g.Target.Inputs {
		testCasesType.Fields.List = append(testCasesType.Fields.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(g.fields[i])},
			Type:  kind2ASTExpr(d.Kind),
		})
	}
	testCasesType.Fields.List = append(testCasesType.Fields.List,
		&ast.Field{Names: []*ast.Ident{ast.NewIdent("exception")}, Type: ast.NewIdent("string")},
		&ast.Field{Names: []*ast.Ident{ast.NewIdent("post")}, Type: anyMapType()},
	)

	for _, p := range paths {
		tc, ok, err := g.testCase(p)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			testCasesExpr.Elts = append(testCasesExpr.Elts, tc)
		}
	}

	// Fill the input map passed to concolic.Execute.
	rangeStmt := testFuncDecl.Body.List[3].(*ast.RangeStmt)
	runCall := rangeStmt.Body.List[0].(*ast.ExprStmt).X.(*ast.CallExpr)
	runBody := runCall.Args[1].(*ast.FuncLit).Body
	executeCall := runBody.List[0].(*ast.AssignStmt).Rhs[0].(*ast.CallExpr)
	inputLit := executeCall.Args[1].(*ast.CompositeLit)
	for i, d := range g.Target.Inputs {
		inputLit.Elts = append(inputLit.Elts, &ast.KeyValueExpr{
			Key:   stringLit(d.Name),
			Value: &ast.SelectorExpr{X: ast.NewIdent("tc"), Sel: ast.NewIdent(g.fields[i])},
		})
	}

	astutil.AddImport(fset, f, "fmt")
	astutil.AddImport(fset, f, "testing")
	if g.needMath {
		astutil.AddImport(fset, f, "math")
	}
	astutil.AddImport(fset, f, g.Package)
	if g.Package != concolicPath {
		astutil.AddImport(fset, f, concolicPath)
	}
	astutil.AddImport(fset, f, assertPath)
	astutil.AddImport(fset, f, requirePath)
	return fset, f, nil
}

func (g *Generator) testCase(p *trace.Path) (*ast.CompositeLit, bool, error) {
	v, ok := p.Valuation()
	if !ok {
		return nil, false, nil
	}
	tc := &ast.CompositeLit{}
	for i, d := range g.Target.Inputs {
		val, ok := v.Get(d.Name)
		if !ok {
			val = expr.Zero(d.Kind)
		}
		tc.Elts = append(tc.Elts, &ast.KeyValueExpr{
			Key:   ast.NewIdent(g.fields[i]),
			Value: g.value2ASTExpr(val.Convert(d.Kind), false),
		})
	}

	switch r := p.Result().(type) {
	case trace.Error:
		tc.Elts = append(tc.Elts, &ast.KeyValueExpr{
			Key:   ast.NewIdent("exception"),
			Value: stringLit(r.ExceptionKind),
		})
	case trace.Ok:
		vals, err := r.Post.Eval(r.Valuation)
		if err != nil {
			return nil, false, errors.Wrap(err, "failed to generate test case")
		}
		post := &ast.CompositeLit{Type: anyMapType()}
		for _, name := range r.Post.Names() {
			post.Elts = append(post.Elts, &ast.KeyValueExpr{
				Key:   stringLit(name),
				Value: g.value2ASTExpr(vals[name], true),
			})
		}
		tc.Elts = append(tc.Elts, &ast.KeyValueExpr{Key: ast.NewIdent("post"), Value: post})
	}
	return tc, true, nil
}

// Write generates the test file and writes it formatted to w.
func (g *Generator) Write(w io.Writer, paths []*trace.Path) error {
	fset, f, err := g.Generate(paths)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return errors.Wrap(err, "failed to format test module")
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func kind2ASTExpr(k expr.Kind) ast.Expr {
	if k == expr.Char {
		return ast.NewIdent("uint16")
	}
	return ast.NewIdent(k.String())
}

func anyMapType() ast.Expr {
	return &ast.MapType{
		Key:   ast.NewIdent("string"),
		Value: &ast.InterfaceType{Methods: &ast.FieldList{}},
	}
}

func stringLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

// value2ASTExpr returns a literal of v. Numeric literals are converted to
// the kind of v when typed is set, so that they keep it in an interface.
func (g *Generator) value2ASTExpr(v expr.Value, typed bool) ast.Expr {
	var lit ast.Expr
	switch k := v.Kind(); {
	case k == expr.Bool:
		return ast.NewIdent(strconv.FormatBool(v.Bool()))
	case k.IsFloat():
		lit = g.floatLit(v.Float())
		typed = true
	default:
		lit = intLit(v.Int())
	}
	if !typed {
		return lit
	}
	return &ast.CallExpr{Fun: kind2ASTExpr(v.Kind()), Args: []ast.Expr{lit}}
}

func intLit(i int64) ast.Expr {
	if i < 0 {
		if i == math.MinInt64 {
			return &ast.BasicLit{Kind: token.INT, Value: "-9223372036854775808"}
		}
		return &ast.UnaryExpr{Op: token.SUB, X: &ast.BasicLit{Kind: token.INT, Value: strconv.FormatInt(-i, 10)}}
	}
	return &ast.BasicLit{Kind: token.INT, Value: strconv.FormatInt(i, 10)}
}

func (g *Generator) floatLit(f float64) ast.Expr {
	mathCall := func(fn string, args ...ast.Expr) ast.Expr {
		g.needMath = true
		return &ast.CallExpr{
			Fun:  &ast.SelectorExpr{X: ast.NewIdent("math"), Sel: ast.NewIdent(fn)},
			Args: args,
		}
	}
	switch {
	case math.IsNaN(f):
		return mathCall("NaN")
	case math.IsInf(f, 1):
		return mathCall("Inf", intLit(1))
	case math.IsInf(f, -1):
		return mathCall("Inf", intLit(-1))
	case math.Signbit(f):
		return &ast.UnaryExpr{Op: token.SUB, X: &ast.BasicLit{Kind: token.FLOAT, Value: strconv.FormatFloat(-f, 'g', -1, 64)}}
	}
	return &ast.BasicLit{Kind: token.FLOAT, Value: strconv.FormatFloat(f, 'g', -1, 64)}
}
