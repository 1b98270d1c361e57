// Package interptest provides an in-memory ports.Interpreter for tests.
package interptest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/budget-tools/rateconv/domain/entities"
	"github.com/budget-tools/rateconv/domain/ports"
)

var _ ports.Interpreter = (*Fake)(nil)

// Func is a function callable through the fake runtime.
type Func func(args []entities.Value) (entities.Value, error)

// Fake records every evaluated call. Functions become visible only after the
// package that provides them has been attached with library().
type Fake struct {
	packages  map[string]map[string]Func
	attached  map[string]Func
	StartErr  error
	StopErr   error
	StartArgs []string
	Calls     []entities.Call
	Starts    int
	Stops     int
	mu        sync.Mutex
}

// New returns a Fake with FinancialMath available for loading.
func New() *Fake {
	f := &Fake{
		packages: make(map[string]map[string]Func),
		attached: make(map[string]Func),
	}
	f.Provide(entities.FinancialMath, entities.RateConvFunction, RateConv)
	return f
}

// Provide registers fn under pkg. It becomes callable after library(pkg).
func (f *Fake) Provide(pkg, name string, fn Func) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.packages[pkg] == nil {
		f.packages[pkg] = make(map[string]Func)
	}
	f.packages[pkg][name] = fn
}

// Name implements ports.Interpreter.
func (f *Fake) Name() string { return "fake" }

// Start implements ports.Interpreter.
func (f *Fake) Start(_ context.Context, args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Starts++
	f.StartArgs = append([]string(nil), args...)
	return f.StartErr
}

// Eval implements ports.Interpreter.
func (f *Fake) Eval(_ context.Context, call entities.Call) (entities.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)

	if call.Function == "library" {
		if len(call.Args) != 1 || call.Args[0].Kind != entities.KindString {
			return entities.Null, fmt.Errorf("invalid package name")
		}
		pkg, ok := f.packages[call.Args[0].Str]
		if !ok {
			return entities.Null, fmt.Errorf("there is no package called '%s'", call.Args[0].Str)
		}
		for name, fn := range pkg {
			f.attached[name] = fn
		}
		return entities.String(call.Args[0].Str), nil
	}

	fn, ok := f.attached[call.Function]
	if !ok {
		return entities.Null, fmt.Errorf("could not find function %q", call.Function)
	}
	return fn(call.Args)
}

// Stop implements ports.Interpreter.
func (f *Fake) Stop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stops++
	return f.StopErr
}

// CallCount returns the number of evaluated calls.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// RateConv mirrors FinancialMath::rate.conv and returns the nominal interest
// rate convertible nom times per year.
func RateConv(args []entities.Value) (entities.Value, error) {
	if len(args) != 4 {
		return entities.Null, fmt.Errorf("rate.conv: want 4 arguments, got %d", len(args))
	}
	rate, ok1 := args[0].Float64()
	conv, ok2 := args[1].Float64()
	nom, ok3 := args[3].Float64()
	if !ok1 || !ok2 || !ok3 || args[2].Kind != entities.KindString {
		return entities.Null, fmt.Errorf("rate.conv: invalid argument types")
	}
	if conv <= 0 || nom <= 0 {
		return entities.Null, fmt.Errorf("rate.conv: conv and nom must be positive")
	}

	var growth float64
	switch args[2].Str {
	case "interest":
		growth = math.Pow(1+rate/conv, conv)
	case "discount":
		growth = math.Pow(1-rate/conv, -conv)
	case "force":
		growth = math.Exp(rate)
	default:
		return entities.Null, fmt.Errorf("rate.conv: type must be interest, discount or force")
	}
	return entities.Real(nom * (math.Pow(growth, 1/nom) - 1)), nil
}
