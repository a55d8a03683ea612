package pinflow

import (
	"context"
	"fmt"

	"github.com/agentstation/pinflow/internal/ctxlog"
)

// PinKind is the role of a pin on its node.
type PinKind int

// Pin kinds.
const (
	InputFlow PinKind = iota
	OutputFlow
	InputArgument
	OutputArgument
)

// String returns the serialized name of the kind.
func (k PinKind) String() string {
	switch k {
	case InputFlow:
		return "input_flow"
	case OutputFlow:
		return "output_flow"
	case InputArgument:
		return "input_argument"
	case OutputArgument:
		return "output_argument"
	default:
		return "unknown"
	}
}

// IsFlow reports whether the kind carries control rather than data.
func (k PinKind) IsFlow() bool {
	return k == InputFlow || k == OutputFlow
}

// IsInput reports whether the kind sits on the input side of a node.
func (k PinKind) IsInput() bool {
	return k == InputFlow || k == InputArgument
}

// Pin is a typed connection point on a node.
type Pin interface {
	// ID is unique among the pins on one side of the owning node.
	ID() string
	Name() string
	Description() string
	Kind() PinKind

	// Node returns the owning node, nil until the pin is attached.
	Node() Node

	attach(owner Node) error
}

// FlowFunc is the routine bound to an input flow pin.
type FlowFunc func(ctx context.Context) error

// PinOption configures a pin.
type PinOption func(*pinOptions)

type pinOptions struct {
	description string
	defaultVal  any
	dependsOn   string
}

// WithPinDescription sets the pin's description.
func WithPinDescription(description string) PinOption {
	return func(o *pinOptions) {
		o.description = description
	}
}

// WithDefault sets the value an unconnected input argument pin returns
// before anything is assigned to it.
func WithDefault(value any) PinOption {
	return func(o *pinOptions) {
		o.defaultVal = value
	}
}

// WithTypeDependsOn makes the pin mirror the resolved type of a sibling pin.
func WithTypeDependsOn(pinID string) PinOption {
	return func(o *pinOptions) {
		o.dependsOn = pinID
	}
}

func applyPinOptions(opts []PinOption) pinOptions {
	var o pinOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type pinBase struct {
	id          string
	name        string
	description string
	owner       Node
}

func (p *pinBase) ID() string          { return p.id }
func (p *pinBase) Name() string        { return p.name }
func (p *pinBase) Description() string { return p.description }
func (p *pinBase) Node() Node          { return p.owner }

func (p *pinBase) attach(owner Node) error {
	if p.owner != nil {
		return fmt.Errorf("%w: pin %q is owned by node %q", ErrPinOwned, p.id, p.owner.TypeID())
	}
	p.owner = owner
	return nil
}

// graph returns the graph of the owning node, if any.
func (p *pinBase) graph() *Graph {
	if p.owner == nil {
		return nil
	}
	return p.owner.base().graph
}

// InputFlowPin receives control and runs its bound routine.
type InputFlowPin struct {
	pinBase
	fn FlowFunc
}

// NewInputFlowPin creates an input flow pin bound to fn.
func NewInputFlowPin(id, name string, fn FlowFunc, opts ...PinOption) *InputFlowPin {
	o := applyPinOptions(opts)
	return &InputFlowPin{
		pinBase: pinBase{id: id, name: name, description: o.description},
		fn:      fn,
	}
}

// Kind returns InputFlow.
func (p *InputFlowPin) Kind() PinKind { return InputFlow }

// Fire runs the bound routine.
func (p *InputFlowPin) Fire(ctx context.Context) error {
	if p.owner != nil {
		ctxlog.FromContext(ctx).DebugContext(ctx, "flow", "node", p.owner.UniqueID(), "type", p.owner.TypeID(), "pin", p.id)
	}
	if g := p.graph(); g != nil {
		g.emit(ctx, Event{Type: EventFlowEnter, NodeID: p.owner.UniqueID(), TypeID: p.owner.TypeID(), PinID: p.id})
	}
	if p.fn == nil {
		return nil
	}
	return p.fn(ctx)
}

// OutputFlowPin hands control to at most one input flow pin.
type OutputFlowPin struct {
	pinBase
	destination *InputFlowPin
}

// NewOutputFlowPin creates an unconnected output flow pin.
func NewOutputFlowPin(id, name string, opts ...PinOption) *OutputFlowPin {
	o := applyPinOptions(opts)
	return &OutputFlowPin{
		pinBase: pinBase{id: id, name: name, description: o.description},
	}
}

// Kind returns OutputFlow.
func (p *OutputFlowPin) Kind() PinKind { return OutputFlow }

// Connect wires p to destination, replacing any previous destination.
func (p *OutputFlowPin) Connect(destination *InputFlowPin) error {
	if destination == nil {
		return fmt.Errorf("%w: nil destination for flow pin %q", ErrPinRoleMismatch, p.id)
	}
	p.destination = destination
	return nil
}

// Destination returns the connected input flow pin, or nil.
func (p *OutputFlowPin) Destination() *InputFlowPin {
	return p.destination
}

// Execute fires the destination. An unconnected pin is a no-op.
func (p *OutputFlowPin) Execute(ctx context.Context) error {
	if p.destination == nil {
		return nil
	}
	return p.destination.Fire(ctx)
}

// ArgumentPin holds the state shared by input and output argument pins.
type ArgumentPin struct {
	pinBase
	typ       Type
	dependsOn string
	value     any
}

// Type returns the declared type.
func (p *ArgumentPin) Type() Type { return p.typ }

// TypeDependsOn returns the id of the sibling pin whose type this pin mirrors.
func (p *ArgumentPin) TypeDependsOn() string { return p.dependsOn }

// ResolvedType returns the declared type, or for an any-typed pin that
// mirrors a sibling, the type flowing into that sibling. Mirrors may chain.
func (p *ArgumentPin) ResolvedType() Type {
	return p.resolvedType(map[*ArgumentPin]bool{})
}

func (p *ArgumentPin) resolvedType(seen map[*ArgumentPin]bool) Type {
	if p.typ != TypeAny || p.dependsOn == "" || p.owner == nil || seen[p] {
		return p.typ
	}
	seen[p] = true

	switch sibling := findPin(p.owner, p.dependsOn, false).(type) {
	case *InputArgumentPin:
		if sibling.source != nil {
			return sibling.source.resolvedType(seen)
		}
		return sibling.ArgumentPin.resolvedType(seen)
	case *OutputArgumentPin:
		return sibling.ArgumentPin.resolvedType(seen)
	}
	return p.typ
}

// InputArgumentPin reads a value from its source, or its own local value
// when unconnected.
type InputArgumentPin struct {
	ArgumentPin
	source *OutputArgumentPin
}

// NewInputArgumentPin creates an input argument pin of type t.
func NewInputArgumentPin(id, name string, t Type, opts ...PinOption) *InputArgumentPin {
	o := applyPinOptions(opts)
	return &InputArgumentPin{
		ArgumentPin: ArgumentPin{
			pinBase:   pinBase{id: id, name: name, description: o.description},
			typ:       t,
			dependsOn: o.dependsOn,
			value:     o.defaultVal,
		},
	}
}

// Kind returns InputArgument.
func (p *InputArgumentPin) Kind() PinKind { return InputArgument }

// Set sanitizes value against the pin type and stores it locally.
func (p *InputArgumentPin) Set(value any) error {
	v, err := Sanitize(value, p.typ)
	if err != nil {
		return fmt.Errorf("pin %q: %w", p.id, err)
	}
	p.value = v
	return nil
}

// Local returns the locally held value, ignoring any connection.
func (p *InputArgumentPin) Local() any {
	return p.value
}

// Value returns the source's value at read time when connected, otherwise
// the local value.
func (p *InputArgumentPin) Value(ctx context.Context) (any, error) {
	if p.source != nil {
		return p.source.Value(ctx)
	}
	return p.value, nil
}

// Connect sets source as the pin's only source; the last wiring wins.
func (p *InputArgumentPin) Connect(source *OutputArgumentPin) error {
	if source == nil {
		return fmt.Errorf("%w: nil source for argument pin %q", ErrPinRoleMismatch, p.id)
	}
	p.source = source
	return nil
}

// Source returns the connected output argument pin, or nil.
func (p *InputArgumentPin) Source() *OutputArgumentPin {
	return p.source
}

// OutputArgumentPin publishes a value computed by its node.
type OutputArgumentPin struct {
	ArgumentPin
}

// NewOutputArgumentPin creates an output argument pin of type t.
func NewOutputArgumentPin(id, name string, t Type, opts ...PinOption) *OutputArgumentPin {
	o := applyPinOptions(opts)
	return &OutputArgumentPin{
		ArgumentPin: ArgumentPin{
			pinBase:   pinBase{id: id, name: name, description: o.description},
			typ:       t,
			dependsOn: o.dependsOn,
		},
	}
}

// Kind returns OutputArgument.
func (p *OutputArgumentPin) Kind() PinKind { return OutputArgument }

// Set sanitizes value against the pin type and stores it.
func (p *OutputArgumentPin) Set(value any) error {
	v, err := Sanitize(value, p.typ)
	if err != nil {
		return fmt.Errorf("pin %q: %w", p.id, err)
	}
	p.value = v
	return nil
}

// Current returns the stored value without evaluating the owning node.
func (p *OutputArgumentPin) Current() any {
	return p.value
}

// Value returns the pin's value. When the owner is a pure function node its
// body runs first, on every read.
func (p *OutputArgumentPin) Value(ctx context.Context) (any, error) {
	if fn, ok := p.owner.(*FunctionNode); ok && fn.Pure() {
		if err := fn.evaluate(ctx); err != nil {
			return nil, err
		}
	}
	return p.value, nil
}

// Connect feeds destination from p. Outputs may feed any number of inputs.
func (p *OutputArgumentPin) Connect(destination *InputArgumentPin) error {
	if destination == nil {
		return fmt.Errorf("%w: nil destination for argument pin %q", ErrPinRoleMismatch, p.id)
	}
	return destination.Connect(p)
}

// Connect wires two pins from whichever of them is output-capable, so the
// caller does not need to know which endpoint is the source.
func Connect(a, b Pin) error {
	switch x := a.(type) {
	case *OutputFlowPin:
		if y, ok := b.(*InputFlowPin); ok {
			return x.Connect(y)
		}
	case *InputFlowPin:
		if y, ok := b.(*OutputFlowPin); ok {
			return y.Connect(x)
		}
	case *OutputArgumentPin:
		if y, ok := b.(*InputArgumentPin); ok {
			return x.Connect(y)
		}
	case *InputArgumentPin:
		if y, ok := b.(*OutputArgumentPin); ok {
			return y.Connect(x)
		}
	}
	return fmt.Errorf("%w: cannot connect %s to %s", ErrPinRoleMismatch, describePin(a), describePin(b))
}

func describePin(p Pin) string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s pin %q", p.Kind(), p.ID())
}
