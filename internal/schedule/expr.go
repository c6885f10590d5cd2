package schedule

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Expr evaluates a user-supplied rate expression against elapsed time. The
// expression sees `t` (seconds since the run began) and `periodic(t, freq)`,
// which maps t onto the [0, 1) phase of a wave with the given frequency.
//
// The program is compiled and trial-evaluated once at construction, so an
// expression that is malformed or does not yield a finite number fails
// before any event is generated.
type Expr struct {
	src     string
	program *vm.Program
}

// NewExpr compiles src and verifies it yields a finite numeric rate.
func NewExpr(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ValidationError{Field: "rate_expr", Reason: "empty expression"}
	}

	program, err := expr.Compile(src, expr.Env(exprEnv(0)))
	if err != nil {
		return nil, &ValidationError{Field: "rate_expr", Reason: err.Error()}
	}

	out, err := expr.Run(program, exprEnv(0))
	if err != nil {
		return nil, &ValidationError{Field: "rate_expr", Reason: fmt.Sprintf("evaluation failed: %v", err)}
	}
	rate, ok := toFloat(out)
	if !ok {
		return nil, &ValidationError{Field: "rate_expr", Reason: fmt.Sprintf("yields %T, want a number", out)}
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, &ValidationError{Field: "rate_expr", Reason: fmt.Sprintf("yields %v, want a finite number", rate)}
	}

	return &Expr{src: src, program: program}, nil
}

// Source returns the expression text as supplied by the user.
func (e *Expr) Source() string {
	return e.src
}

// Validate reports whether the expression is ready to evaluate. Compilation
// already happened in NewExpr, so a constructed Expr always passes.
func (e *Expr) Validate() error {
	if e.program == nil {
		return &ValidationError{Field: "rate_expr", Reason: "not compiled"}
	}
	return nil
}

// RateAt runs the pre-compiled program at the given elapsed time. Runtime
// failures and non-numeric or non-finite results evaluate to zero, which
// the generator floors to its minimum rate.
func (e *Expr) RateAt(elapsed float64) float64 {
	out, err := expr.Run(e.program, exprEnv(elapsed))
	if err != nil {
		return 0
	}
	rate, ok := toFloat(out)
	if !ok || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return rate
}

func exprEnv(elapsed float64) map[string]interface{} {
	return map[string]interface{}{
		"t": elapsed,
		"periodic": func(t, freq float64) float64 {
			return math.Mod(t*freq, 1.0)
		},
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
