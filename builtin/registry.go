// Package builtin provides the standard node catalog: the Begin entry node,
// control flow macros, variables, math, comparison, logic, conversion, data
// and scripting nodes.
package builtin

import (
	"io"
	"os"

	"github.com/agentstation/pinflow"
)

// Categories used by the catalog. Nested menus are separated by "|".
const (
	CategoryFlowControl = "Flow Control"
	CategoryVariables   = "Variables"
	CategoryMath        = "Math"
	CategoryComparison  = "Math|Comparison"
	CategoryLogic       = "Logic"
	CategoryConversions = "Conversions"
	CategoryConstants   = "Constants"
	CategoryLogging     = "Logging"
	CategoryData        = "Data"
	CategoryScripting   = "Scripting"
)

// options holds catalog configuration.
type options struct {
	console io.Writer
}

// Option configures the catalog.
type Option func(*options)

// WithConsole sets where Console Log writes when the execution context
// carries no writer of its own.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

type entry struct {
	typeID  string
	factory pinflow.Factory
}

func catalog(o *options) []entry {
	entries := []entry{
		{TypeBegin, newBegin},
		{TypeConsoleLog, newConsoleLog(o.console)},
	}
	entries = append(entries, flowEntries()...)
	entries = append(entries, variableEntries()...)
	entries = append(entries, mathEntries()...)
	entries = append(entries, compareEntries()...)
	entries = append(entries, logicEntries()...)
	entries = append(entries, convertEntries()...)
	entries = append(entries, dataEntries()...)
	return entries
}

// RegisterAll registers the catalog with reg and designates Begin as the
// entry type.
func RegisterAll(reg *pinflow.Registry, opts ...Option) error {
	o := &options{console: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	for _, e := range catalog(o) {
		if err := reg.Register(e.typeID, e.factory); err != nil {
			return err
		}
	}
	reg.SetEntryType(TypeBegin)
	return nil
}

// NewRegistry returns a registry holding the catalog.
func NewRegistry(opts ...Option) (*pinflow.Registry, error) {
	reg := pinflow.NewRegistry()
	if err := RegisterAll(reg, opts...); err != nil {
		return nil, err
	}
	return reg, nil
}

// build drops the typed node pointer when construction failed.
func build[T pinflow.Node](n T, err error) (pinflow.Node, error) {
	if err != nil {
		return nil, err
	}
	return n, nil
}
