package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/tacky-cc/pkg/cabs"
	"github.com/raymyers/tacky-cc/pkg/diag"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name   string   `yaml:"name"`
	Input  string   `yaml:"input"`
	Expect []string `yaml:"expect"`
	Error  string   `yaml:"error"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func parse(t *testing.T, src string) *cabs.Program {
	t.Helper()
	prog, err := Parse(src, unit.New())
	require.NoError(t, err)
	return prog
}

func parseErr(t *testing.T, src string) *diag.Error {
	t.Helper()
	_, err := Parse(src, unit.New())
	require.Error(t, err)
	var d *diag.Error
	require.True(t, errors.As(err, &d), "expected *diag.Error, got %T", err)
	assert.Equal(t, diag.KindParse, d.Kind)
	return d
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	require.NoError(t, err)

	var testFile TestFile
	require.NoError(t, yaml.Unmarshal(data, &testFile))
	require.NotEmpty(t, testFile.Tests)

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Error != "" {
				d := parseErr(t, tc.Input)
				assert.Contains(t, d.Msg, tc.Error)
				return
			}
			out := cabs.String(parse(t, tc.Input))
			for _, want := range tc.Expect {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestPrintedTree(t *testing.T) {
	prog := parse(t, "int main(void) { return 1 + 2; }")
	want := `Program
╰── <6> Function [main]
    ├── Returns
    │   ╰── Int
    ╰── Body
        ╰── <4> Return
            ╰── <3> Binary [+]
                ├── <1> Constant Int [1]
                ╰── <2> Constant Int [2]
`
	assert.Equal(t, want, cabs.String(prog))
}

func TestRepeatedParsesAgree(t *testing.T) {
	src := `
static long counter = 3;
int add(int a, int b) { return a + b * counter; }
int main(void) {
    int arr[3] = {1, 2, 3,};
    for (int i = 0; i < 3; i++) {
        if (arr[i] > 1) continue; else arr[i] += add(i, 2);
    }
    switch (arr[0]) { case 1: return 1; default: break; }
    return sizeof(int) + sizeof arr;
}`
	ctxA, ctxB := unit.New(), unit.New()
	a, err := Parse(src, ctxA)
	require.NoError(t, err)
	b, err := Parse(src, ctxB)
	require.NoError(t, err)
	assert.Equal(t, cabs.String(a), cabs.String(b))
	assert.Equal(t, ctxA.LastID(), ctxB.LastID())
}

func declType(t *testing.T, src string) string {
	t.Helper()
	prog := parse(t, src)
	require.NotEmpty(t, prog.Decls)
	switch d := prog.Decls[0].(type) {
	case *cabs.VarDecl:
		return d.Type.String()
	case *cabs.FunDecl:
		return d.Type.String()
	}
	t.Fatalf("unexpected declaration %T", prog.Decls[0])
	return ""
}

func TestDeclarators(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int x;", "Int"},
		{"int *x;", "Pointer(Int)"},
		{"int **x;", "Pointer(Pointer(Int))"},
		{"int x[3][4];", "Array(3, Array(4, Int))"},
		{"int *x[3];", "Array(3, Pointer(Int))"},
		{"int (*x)[3];", "Pointer(Array(3, Int))"},
		{"int ((x));", "Int"},
		{"char c;", "Char"},
		{"signed char c;", "SChar"},
		{"char unsigned c;", "UChar"},
		{"unsigned u;", "UInt"},
		{"long int l;", "Long"},
		{"int long unsigned l;", "ULong"},
		{"double d;", "Double"},
		{"int f(void);", "FunType(params=[], ret=Int)"},
		{"int f();", "FunType(params=[], ret=Int)"},
		{"long f(int a, double *b);", "FunType(params=[Int, Pointer(Double)], ret=Long)"},
		{"int(*foo(int x, int y))[3];", "FunType(params=[Int, Int], ret=Pointer(Array(3, Int)))"},
		{"int (foo)(void);", "FunType(params=[], ret=Int)"},
		{"int(foo(void))[3][4];", "FunType(params=[], ret=Pointer(Array(3, Array(4, Int))))"},
		{"int ((foo(void)))[2];", "FunType(params=[], ret=Pointer(Array(2, Int)))"},
		{"void *f(int a[3]);", "FunType(params=[Array(3, Int)], ret=Pointer(Void))"},
		{"int f(int, long);", "FunType(params=[Int, Long], ret=Int)"},
		{"int f(int *, char [3]);", "FunType(params=[Pointer(Int), Array(3, Char)], ret=Int)"},
		{"int f(int (*)[3]);", "FunType(params=[Pointer(Array(3, Int))], ret=Int)"},
		{"int f(double, int b);", "FunType(params=[Double, Int], ret=Int)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, declType(t, tt.src))
		})
	}
}

func TestMultipleDeclarators(t *testing.T) {
	prog := parse(t, "int a = 1, *b, c[2], f(void);")
	require.Len(t, prog.Decls, 4)
	assert.Equal(t, "a", prog.Decls[0].(*cabs.VarDecl).Name)
	assert.Equal(t, "Pointer(Int)", prog.Decls[1].(*cabs.VarDecl).Type.String())
	assert.Equal(t, "Array(2, Int)", prog.Decls[2].(*cabs.VarDecl).Type.String())
	assert.Nil(t, prog.Decls[3].(*cabs.FunDecl).Body)
}

func TestStorageClass(t *testing.T) {
	prog := parse(t, "static int x; extern long y; int static z;")
	require.Len(t, prog.Decls, 3)
	assert.Equal(t, cabs.StorageStatic, prog.Decls[0].(*cabs.VarDecl).Storage)
	assert.Equal(t, cabs.StorageExtern, prog.Decls[1].(*cabs.VarDecl).Storage)
	assert.Equal(t, cabs.StorageStatic, prog.Decls[2].(*cabs.VarDecl).Storage)
}

func TestDeclaratorErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"int foo(void)[3];", "cannot return an array"},
		{"int (foo[3])(int);", "Can't apply additional derivations to a function type"},
		{"int (*fp)(void);", "Can't apply additional derivations to a function type"},
		{"int f(void)(void);", "Can't apply additional derivations to a function type"},
		{"int a[1.5];", "integer constant"},
		{"int a[x];", "integer constant"},
		{"int a[-1];", "positive"},
		{"int a[0];", "positive"},
		{"int a[3;", "expected ]"},
		{"int a[3] = {};", "empty initializer list"},
		{"int a[3] = {1, 2;", "expected }"},
		{"int long long x;", "duplicate type specifier"},
		{"signed unsigned x;", "both signed and unsigned"},
		{"long double d;", "double cannot be combined"},
		{"long char c;", "char"},
		{"void int x;", "void cannot be combined"},
		{"static extern int x;", "multiple storage classes"},
		{"int f(static int a);", "storage class not allowed"},
		{"int f(int (int));", "cannot have function type"},
		{"int f(int, long) { return 0; }", "parameter name omitted in definition of f"},
		{"x;", "expected type specifier"},
		{"int 3x;", "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			d := parseErr(t, tt.src)
			assert.Contains(t, d.Msg, tt.want)
		})
	}
}

func TestIntegerLiteralTypes(t *testing.T) {
	tests := []struct {
		lit  string
		want string
	}{
		{"1", "Constant Int [1]"},
		{"2147483647", "Constant Int [2147483647]"},
		{"2147483648", "Constant Long [2147483648]"},
		{"5l", "Constant Long [5]"},
		{"5u", "Constant UInt [5]"},
		{"4294967296u", "Constant ULong [4294967296]"},
		{"5ul", "Constant ULong [5]"},
		{"5LU", "Constant ULong [5]"},
		{"'a'", "Constant Int [97]"},
		{"'\xe9'", "Constant Int [-23]"},
		{"'\x7f'", "Constant Int [127]"},
		{"1.5", "Constant Double [+1.5e0]"},
	}
	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			out := cabs.String(parse(t, "int main(void) { return "+tt.lit+"; }"))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestIntegerLiteralTooLarge(t *testing.T) {
	d := parseErr(t, "long x = 9223372036854775808;")
	assert.Contains(t, d.Msg, "too large")
	parse(t, "unsigned long x = 9223372036854775808u;")
	d = parseErr(t, "unsigned long x = 18446744073709551616u;")
	assert.Contains(t, d.Msg, "too large")
}

func TestPrecedenceAndAssociativity(t *testing.T) {
	out := cabs.String(parse(t, "int main(void) { a = b = c ? d : e || f && g | h ^ i & j == k < l << m + n * o; }"))
	var ops []string
	for _, line := range strings.Split(out, "\n") {
		for _, kind := range []string{"Assign [", "Binary [", "Conditional ["} {
			if i := strings.Index(line, kind); i >= 0 {
				ops = append(ops, strings.TrimSuffix(line[i+len(kind):], "]"))
			}
		}
	}
	assert.Equal(t, []string{"=", "=", "?", "||", "&&", "|", "^", "&", "==", "<", "<<", "+", "*"}, ops)
}

func TestLeftAssociativeSubtraction(t *testing.T) {
	prog := parse(t, "int main(void) { return 1 - 2 - 3; }")
	fn := prog.Decls[0].(*cabs.FunDecl)
	ret := fn.Body.Items[0].(*cabs.Return)
	outer := ret.Expr.(*cabs.Binary)
	inner, ok := outer.Left.(*cabs.Binary)
	require.True(t, ok, "expected (1 - 2) - 3")
	assert.Equal(t, cabs.OpSub, inner.Op)
	assert.IsType(t, &cabs.Constant{}, outer.Right)
}

func TestCastAndSizeof(t *testing.T) {
	prog := parse(t, "int main(void) { return (long)(int *)p + sizeof(int (*)[3]) + sizeof x; }")
	out := cabs.String(prog)
	assert.Contains(t, out, "Cast [Long]")
	assert.Contains(t, out, "Cast [Pointer(Int)]")
	assert.Contains(t, out, "SizeOfType")
	assert.Contains(t, out, "Pointer(Array(3, Int))")
	assert.Contains(t, out, "SizeOfExpr")

	d := parseErr(t, "int main(void) { return sizeof(static int); }")
	assert.Contains(t, d.Msg, "storage class not allowed")
}

func TestStringConcatenation(t *testing.T) {
	prog := parse(t, `char *s = "ab" "c\n";`)
	v := prog.Decls[0].(*cabs.VarDecl)
	lit := v.Init.(*cabs.SingleInit).Expr.(*cabs.StringLiteral)
	assert.Equal(t, []byte("abc\n"), lit.Value)
}

func TestErrorSpan(t *testing.T) {
	d := parseErr(t, "int main(void) {\n  return 1\n}")
	assert.Equal(t, 3, d.Span.Line)
	assert.Equal(t, 1, d.Span.Col)
	assert.Equal(t, "3:1: parse error: expected ;, got }", d.Error())
}

func TestForInit(t *testing.T) {
	prog := parse(t, "int main(void) { for (int i[3] = {1,2,3}, j; ; ) ; for (;;) break; }")
	body := prog.Decls[0].(*cabs.FunDecl).Body
	first := body.Items[0].(*cabs.For)
	decl, ok := first.Init.(*cabs.ForInitDecl)
	require.True(t, ok)
	assert.Len(t, decl.Decls, 2)
	assert.Nil(t, first.Cond)
	second := body.Items[1].(*cabs.For)
	assert.Nil(t, second.Init.(*cabs.ForInitExpr).Expr)

	d := parseErr(t, "int main(void) { for (int f(void); ;) ; }")
	assert.Contains(t, d.Msg, "for loop initializer")
}
