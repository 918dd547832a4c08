package expression

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/peoplekit/hradmin/pkg/utils"
)

// Engine evaluates display expressions against row maps. Rows are
// heterogeneous, so programs are compiled against an open map environment
// and unknown identifiers resolve to nil instead of failing the row.
type Engine struct {
	programCache map[string]*vm.Program
	mu           sync.RWMutex
}

// NewEngine creates a new expression engine
func NewEngine() *Engine {
	return &Engine{
		programCache: make(map[string]*vm.Program),
	}
}

// EvaluateRow compiles (if needed) and runs an expression against one row.
func (e *Engine) EvaluateRow(expression string, row map[string]interface{}) (interface{}, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return nil, err
	}

	env := make(map[string]interface{}, len(row))
	for k, v := range row {
		env[k] = v
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return nil, err
	}
	return output, nil
}

// Validate checks that an expression compiles.
func (e *Engine) Validate(expression string) error {
	_, err := e.getProgram(expression)
	return err
}

func (e *Engine) getProgram(expression string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programCache[expression]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if prog, ok := e.programCache[expression]; ok {
		return prog, nil
	}

	options := []expr.Option{
		expr.Env(map[string]interface{}{}),
		expr.AllowUndefinedVariables(),
		expr.Function("CONCAT", func(params ...interface{}) (interface{}, error) {
			var b strings.Builder
			for _, p := range params {
				if p == nil {
					continue
				}
				fmt.Fprintf(&b, "%v", p)
			}
			return b.String(), nil
		}),
		expr.Function("COALESCE", func(params ...interface{}) (interface{}, error) {
			for _, p := range params {
				if p == nil {
					continue
				}
				if s, ok := p.(string); ok && s == "" {
					continue
				}
				return p, nil
			}
			return nil, nil
		}),
		expr.Function("UPPER", func(params ...interface{}) (interface{}, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("UPPER requires 1 argument")
			}
			s, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("UPPER argument must be string")
			}
			return strings.ToUpper(s), nil
		}),
		expr.Function("LOWER", func(params ...interface{}) (interface{}, error) {
			if len(params) != 1 {
				return nil, fmt.Errorf("LOWER requires 1 argument")
			}
			s, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("LOWER argument must be string")
			}
			return strings.ToLower(s), nil
		}),
		expr.Function("ROUND", func(params ...interface{}) (interface{}, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("ROUND requires 2 arguments")
			}
			val := utils.ToFloat64(params[0])
			prec := utils.ToInt(params[1])

			mult := 1.0
			for i := 0; i < prec; i++ {
				mult *= 10
			}
			return float64(int(val*mult+0.5)) / mult, nil
		}),
		expr.Function("YESNO", func(params ...interface{}) (interface{}, error) {
			if len(params) != 3 {
				return nil, fmt.Errorf("YESNO requires 3 arguments (value, yes, no)")
			}
			if utils.ToBool(params[0]) {
				return params[1], nil
			}
			return params[2], nil
		}),
	}

	program, err := expr.Compile(expression, options...)
	if err != nil {
		return nil, err
	}

	e.programCache[expression] = program
	return program, nil
}
