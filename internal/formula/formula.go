package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// ErrInvalidExpression is returned when an expression cannot be compiled.
var ErrInvalidExpression = errors.New("invalid formula expression")

// ErrNonFinite is returned when an expression evaluates to NaN or an infinity,
// typically after a division by zero.
var ErrNonFinite = errors.New("formula result is not a finite number")

// costLimit bounds the work a single evaluation may perform.
const costLimit = 10_000

var allowedIdentifiers = map[string]struct{}{
	"level":      {},
	"experience": {},
	"min":        {},
	"max":        {},
}

// Vars holds the values bound to an expression's variables.
type Vars struct {
	Level      int64
	Experience int64
}

// Expression is a compiled, reusable formula. It is safe for concurrent use.
type Expression struct {
	source  string
	program cel.Program
}

var baseEnv = mustEnv()

func mustEnv() *cel.Env {
	env, err := cel.NewEnv(
		cel.Variable("level", cel.DoubleType),
		cel.Variable("experience", cel.DoubleType),
		cel.Function("min",
			cel.Overload("formula_min_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(a, b ref.Val) ref.Val {
					return types.Double(math.Min(float64(a.(types.Double)), float64(b.(types.Double))))
				}),
			),
		),
		cel.Function("max",
			cel.Overload("formula_max_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(a, b ref.Val) ref.Val {
					return types.Double(math.Max(float64(a.(types.Double)), float64(b.(types.Double))))
				}),
			),
		),
	)
	if err != nil {
		panic(fmt.Sprintf("formula: building expression environment: %v", err))
	}
	return env
}

// Compile validates src against the arithmetic whitelist and compiles it.
func Compile(src string) (*Expression, error) {
	normalized, err := normalize(src)
	if err != nil {
		return nil, err
	}

	ast, iss := baseEnv.Compile(normalized)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, src, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.DoubleType) {
		return nil, fmt.Errorf("%w: %q: result must be a number", ErrInvalidExpression, src)
	}

	program, err := baseEnv.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, src, err)
	}

	return &Expression{source: src, program: program}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package level defaults.
func MustCompile(src string) *Expression {
	expr, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return expr
}

// String returns the expression as it was written.
func (e *Expression) String() string {
	return e.source
}

// Eval evaluates the expression with the given variables.
func (e *Expression) Eval(vars Vars) (float64, error) {
	out, _, err := e.program.Eval(map[string]any{
		"level":      float64(vars.Level),
		"experience": float64(vars.Experience),
	})
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", e.source, err)
	}

	value, ok := out.Value().(float64)
	if !ok {
		return 0, fmt.Errorf("evaluating %q: unexpected result type %T", e.source, out.Value())
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("evaluating %q: %w", e.source, ErrNonFinite)
	}
	return value, nil
}

// Ceil evaluates the expression and rounds the result up to an integer.
func (e *Expression) Ceil(vars Vars) (int64, error) {
	value, err := e.Eval(vars)
	if err != nil {
		return 0, err
	}
	return CeilInt(value)
}

// CeilInt rounds value up, rejecting results outside the int64 range.
func CeilInt(value float64) (int64, error) {
	rounded := math.Ceil(value)
	if math.IsNaN(rounded) || rounded >= math.MaxInt64 || rounded <= math.MinInt64 {
		return 0, ErrNonFinite
	}
	return int64(rounded), nil
}

// normalize tokenizes src, rejecting anything outside the whitelist, and
// rewrites integer literals as doubles so that "1 / level" is real division.
func normalize(src string) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	var out strings.Builder
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			out.WriteRune(' ')
			i++
		case strings.ContainsRune("+-*/(),", r):
			out.WriteRune(r)
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			dots := 0
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}
			literal := string(runes[start:i])
			if dots > 1 || strings.HasSuffix(literal, ".") {
				return "", fmt.Errorf("%w: malformed number %q", ErrInvalidExpression, literal)
			}
			if strings.HasPrefix(literal, ".") {
				literal = "0" + literal
			}
			if dots == 0 {
				literal += ".0"
			}
			out.WriteString(literal)
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			ident := string(runes[start:i])
			if _, ok := allowedIdentifiers[ident]; !ok {
				return "", fmt.Errorf("%w: unknown identifier %q", ErrInvalidExpression, ident)
			}
			out.WriteString(ident)
		default:
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidExpression, r)
		}
	}
	return out.String(), nil
}
