package tackygen

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/tacky-cc/pkg/consts"
	"github.com/raymyers/tacky-cc/pkg/ctypes"
	"github.com/raymyers/tacky-cc/pkg/parser"
	"github.com/raymyers/tacky-cc/pkg/sema"
	"github.com/raymyers/tacky-cc/pkg/tacky"
	"github.com/raymyers/tacky-cc/pkg/unit"
)

// TestSpec represents a test case from tacky.yaml
type TestSpec struct {
	Name        string   `yaml:"name"`
	Input       string   `yaml:"input"`
	Expect      []string `yaml:"expect"`
	ExpectOrder []string `yaml:"expect_order"`
	ExpectNot   []string `yaml:"expect_not"`
}

// TestFile represents the tacky.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func lower(t *testing.T, src string) (*tacky.Program, *unit.Context) {
	t.Helper()
	ctx := unit.New()
	prog, err := parser.Parse(src, ctx)
	require.NoError(t, err)
	require.NoError(t, sema.Analyze(prog, ctx))
	return Lower(prog, ctx), ctx
}

func lowerString(t *testing.T, src string) string {
	t.Helper()
	prog, _ := lower(t, src)
	return tacky.String(prog)
}

func TestTackyYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/tacky.yaml")
	require.NoError(t, err)

	var testFile TestFile
	require.NoError(t, yaml.Unmarshal(data, &testFile))
	require.NotEmpty(t, testFile.Tests)

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			out := lowerString(t, tc.Input)
			for _, want := range tc.Expect {
				assert.Contains(t, out, want)
			}
			rest := out
			for _, want := range tc.ExpectOrder {
				idx := strings.Index(rest, want)
				if !assert.GreaterOrEqual(t, idx, 0, "expected %q in order in:\n%s", want, out) {
					break
				}
				rest = rest[idx+len(want):]
			}
			for _, unwanted := range tc.ExpectNot {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestArrayScenarioExact(t *testing.T) {
	out := lowerString(t, `
int main(void) {
    int arr[3] = {1, 2, 3};
    return arr[2];
}`)
	want := `global function main() {
    arr.0[0] = 1
    arr.0[4] = 2
    arr.0[8] = 3
    tmp.1 = &arr.0
    tmp.2 = add_ptr(tmp.1, 2L, scale=4)
    tmp.3 = *tmp.2
    return tmp.3
    return 0
}
`
	assert.Equal(t, want, out)
}

func TestLoweringIsDeterministic(t *testing.T) {
	src := `
int g = 2;
int twice(int x) { return x * g; }
int main(void) {
    int acc = 0;
    for (int i = 0; i < 4; i++)
        acc += twice(i) ? i : -i;
    return acc;
}`
	assert.Equal(t, lowerString(t, src), lowerString(t, src))
}

func TestSubscriptSymmetry(t *testing.T) {
	left := lowerString(t, "int get(int *a, int i) { return a[i]; }")
	right := lowerString(t, "int get(int *a, int i) { return i[a]; }")
	assert.Equal(t, left, right)
	assert.Contains(t, left, "tmp.2 = sign_extend i.1")
	assert.Contains(t, left, "tmp.3 = add_ptr(a.0, tmp.2, scale=4)")
}

var addPtrRe = regexp.MustCompile(`add_ptr\([^)]*, scale=(\d+)\)`)

func TestPointerArithmeticScaling(t *testing.T) {
	tests := []struct {
		decl  string
		scale string
	}{
		{"char *p", "1"},
		{"int *p", "4"},
		{"long *p", "8"},
		{"double *p", "8"},
		{"int (*p)[3]", "12"},
	}
	for _, tc := range tests {
		t.Run(tc.decl, func(t *testing.T) {
			out := lowerString(t, "long n = 3;\nvoid f(void) { "+tc.decl+" = 0; p = p + n; }")
			matches := addPtrRe.FindAllStringSubmatch(out, -1)
			require.Len(t, matches, 1, out)
			assert.Equal(t, tc.scale, matches[0][1])
			assert.NotContains(t, out, " * ")
		})
	}
}

func TestSizeofPurity(t *testing.T) {
	out := lowerString(t, `
int bump(void);
int main(void) {
    int x = 0;
    unsigned long s = sizeof (x = bump()) + sizeof x++;
    return x;
}`)
	assert.NotContains(t, out, "bump(")
	assert.NotContains(t, out, "x.0 + 1")
	assert.Contains(t, out, "4UL + 4UL")
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	out := lowerString(t, `
int side(void);
int main(void) {
    int a = 0;
    return a && side();
}`)
	jump := strings.Index(out, "jump_if_zero(a.0, and_false_1)")
	call := strings.Index(out, "side()")
	target := strings.Index(out, "and_false_1:")
	require.True(t, jump >= 0 && call >= 0 && target >= 0, out)
	assert.Less(t, jump, call)
	assert.Less(t, call, target)
}

func TestStaticInitCoverage(t *testing.T) {
	prog, _ := lower(t, `
int a[5] = {1, 2};
char s[8] = "abc";
long t;
double d[2] = {1.0};
char *p = "xyz";
int main(void) {
    static unsigned char buf[3][3] = {"ab", "c"};
    return 0;
}`)
	var seen int
	for _, top := range prog.TopLevels {
		switch v := top.(type) {
		case *tacky.StaticVariable:
			assert.Equal(t, ctypes.Sizeof(v.Type), consts.TotalBytes(v.Init), v.Name)
			seen++
		case *tacky.StaticConstant:
			assert.Equal(t, ctypes.Sizeof(v.Type), v.Init.Bytes(), v.Name)
		}
	}
	assert.Equal(t, 6, seen)
}

func TestTopLevelOrder(t *testing.T) {
	prog, _ := lower(t, `
int x = 1;
int helper(void) { return x; }
char *msg = "hi";
int main(void) { return helper(); }`)
	var kinds []string
	for _, top := range prog.TopLevels {
		switch v := top.(type) {
		case *tacky.Function:
			kinds = append(kinds, "function "+v.Name)
		case *tacky.StaticVariable:
			kinds = append(kinds, "static "+v.Name)
		case *tacky.StaticConstant:
			kinds = append(kinds, "constant "+v.Name)
		}
	}
	assert.Equal(t, []string{
		"function helper", "function main", "static x", "static msg", "constant string.0",
	}, kinds)
}

func TestTemporariesAreLocals(t *testing.T) {
	prog, ctx := lower(t, `
int main(void) {
    long a = 1;
    return a + 2 > 0;
}`)
	fn := prog.Functions()[0]
	for _, instr := range fn.Body {
		b, ok := instr.(tacky.Binary)
		if !ok {
			continue
		}
		dst := b.Dst.(tacky.Var).Name
		entry := ctx.Symbols.Get(dst)
		if b.Op == tacky.Add {
			assert.Equal(t, "Long", entry.Type.String())
		} else {
			assert.Equal(t, "Int", entry.Type.String())
		}
	}
}

func TestVoidFunctionEndsWithBareReturn(t *testing.T) {
	prog, _ := lower(t, "void f(void) { return; }")
	body := prog.Functions()[0].Body
	require.Len(t, body, 2)
	assert.Equal(t, tacky.Return{}, body[0])
	assert.Equal(t, tacky.Return{}, body[1])
}
