package pinflow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Names of the flow pins injected around impure function nodes and declared
// by entry nodes.
const (
	ExecIn  = "exec_in"
	ExecOut = "exec_out"
)

// NodeKind is the shape of a node.
type NodeKind int

// Node kinds.
const (
	KindEntry NodeKind = iota
	KindFunction
	KindMacro
)

// String returns the serialized name of the kind.
func (k NodeKind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindFunction:
		return "function"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Node is implemented by *EntryNode, *FunctionNode and *MacroNode. The set
// is closed: custom nodes are built through the constructors of this package.
type Node interface {
	// TypeID is the registry id shared by every instance of the node type.
	TypeID() string

	// UniqueID identifies the instance within its graph.
	UniqueID() string
	SetUniqueID(id string)

	Name() string
	Description() string
	Category() string
	Kind() NodeKind
	Pure() bool

	// Inputs and Outputs return the ordered pins of each side.
	Inputs() []Pin
	Outputs() []Pin

	// Input and Output look a pin up by id on one side.
	Input(id string) (Pin, error)
	Output(id string) (Pin, error)

	// Graph returns the owning graph, nil before the node joins one.
	Graph() *Graph

	base() *nodeBase
}

// NodeOption configures a node at construction.
type NodeOption func(*nodeOptions)

type nodeOptions struct {
	description string
	category    string
	inputs      []Pin
	outputs     []Pin
	pure        bool
}

// WithDescription sets the node description.
func WithDescription(description string) NodeOption {
	return func(o *nodeOptions) {
		o.description = description
	}
}

// WithCategory sets the node category, "|"-separated for nested menus.
func WithCategory(category string) NodeOption {
	return func(o *nodeOptions) {
		o.category = category
	}
}

// WithInputs declares the node's input pins in order.
func WithInputs(pins ...Pin) NodeOption {
	return func(o *nodeOptions) {
		o.inputs = append(o.inputs, pins...)
	}
}

// WithOutputs declares the node's output pins in order.
func WithOutputs(pins ...Pin) NodeOption {
	return func(o *nodeOptions) {
		o.outputs = append(o.outputs, pins...)
	}
}

// Pure marks a function node as pure: no flow pins, evaluated only when one
// of its output argument pins is read.
func Pure() NodeOption {
	return func(o *nodeOptions) {
		o.pure = true
	}
}

type nodeBase struct {
	typeID      string
	uniqueID    string
	name        string
	description string
	category    string
	pure        bool
	inputs      []Pin
	outputs     []Pin
	graph       *Graph
}

func (n *nodeBase) TypeID() string        { return n.typeID }
func (n *nodeBase) UniqueID() string      { return n.uniqueID }
func (n *nodeBase) SetUniqueID(id string) { n.uniqueID = id }
func (n *nodeBase) Name() string          { return n.name }
func (n *nodeBase) Description() string   { return n.description }
func (n *nodeBase) Category() string      { return n.category }
func (n *nodeBase) Pure() bool            { return n.pure }
func (n *nodeBase) Graph() *Graph         { return n.graph }
func (n *nodeBase) base() *nodeBase       { return n }

// Inputs returns a copy of the input pins.
func (n *nodeBase) Inputs() []Pin {
	return append([]Pin(nil), n.inputs...)
}

// Outputs returns a copy of the output pins.
func (n *nodeBase) Outputs() []Pin {
	return append([]Pin(nil), n.outputs...)
}

// Input returns the input pin with the given id.
func (n *nodeBase) Input(id string) (Pin, error) {
	for _, p := range n.inputs {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: input pin %q not found on node %q", ErrPinLookup, id, n.typeID)
}

// Output returns the output pin with the given id.
func (n *nodeBase) Output(id string) (Pin, error) {
	for _, p := range n.outputs {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: output pin %q not found on node %q", ErrPinLookup, id, n.typeID)
}

// InputFlow returns the input flow pin with the given id.
func (n *nodeBase) InputFlow(id string) (*InputFlowPin, error) {
	p, err := n.Input(id)
	if err != nil {
		return nil, err
	}
	if fp, ok := p.(*InputFlowPin); ok {
		return fp, nil
	}
	return nil, fmt.Errorf("%w: pin %q on node %q is %s, not input_flow", ErrPinLookup, id, n.typeID, p.Kind())
}

// OutputFlow returns the output flow pin with the given id.
func (n *nodeBase) OutputFlow(id string) (*OutputFlowPin, error) {
	p, err := n.Output(id)
	if err != nil {
		return nil, err
	}
	if fp, ok := p.(*OutputFlowPin); ok {
		return fp, nil
	}
	return nil, fmt.Errorf("%w: pin %q on node %q is %s, not output_flow", ErrPinLookup, id, n.typeID, p.Kind())
}

// Argument returns the input argument pin with the given id.
func (n *nodeBase) Argument(id string) (*InputArgumentPin, error) {
	p, err := n.Input(id)
	if err != nil {
		return nil, err
	}
	if ap, ok := p.(*InputArgumentPin); ok {
		return ap, nil
	}
	return nil, fmt.Errorf("%w: pin %q on node %q is %s, not input_argument", ErrPinLookup, id, n.typeID, p.Kind())
}

// Result returns the output argument pin with the given id.
func (n *nodeBase) Result(id string) (*OutputArgumentPin, error) {
	p, err := n.Output(id)
	if err != nil {
		return nil, err
	}
	if ap, ok := p.(*OutputArgumentPin); ok {
		return ap, nil
	}
	return nil, fmt.Errorf("%w: pin %q on node %q is %s, not output_argument", ErrPinLookup, id, n.typeID, p.Kind())
}

// Arg reads the value of the input argument pin with the given id.
func (n *nodeBase) Arg(ctx context.Context, id string) (any, error) {
	p, err := n.Argument(id)
	if err != nil {
		return nil, err
	}
	return p.Value(ctx)
}

// SetResult stores value on the output argument pin with the given id.
func (n *nodeBase) SetResult(id string, value any) error {
	p, err := n.Result(id)
	if err != nil {
		return err
	}
	return p.Set(value)
}

// Fire runs the input flow pin with the given id.
func (n *nodeBase) Fire(ctx context.Context, id string) error {
	p, err := n.InputFlow(id)
	if err != nil {
		return err
	}
	return p.Fire(ctx)
}

// Trigger executes the output flow pin with the given id.
func (n *nodeBase) Trigger(ctx context.Context, id string) error {
	p, err := n.OutputFlow(id)
	if err != nil {
		return err
	}
	return p.Execute(ctx)
}

func (n *nodeBase) attachPins(owner Node) error {
	seen := make(map[string]bool, len(n.inputs))
	for _, p := range n.inputs {
		if seen[p.ID()] {
			return fmt.Errorf("%w: input %q on node %q", ErrDuplicatePin, p.ID(), n.typeID)
		}
		seen[p.ID()] = true
	}
	seen = make(map[string]bool, len(n.outputs))
	for _, p := range n.outputs {
		if seen[p.ID()] {
			return fmt.Errorf("%w: output %q on node %q", ErrDuplicatePin, p.ID(), n.typeID)
		}
		seen[p.ID()] = true
	}

	for _, p := range n.inputs {
		if !p.Kind().IsInput() {
			return fmt.Errorf("%w: %s declared as input on node %q", ErrPinRoleMismatch, describePin(p), n.typeID)
		}
		if err := p.attach(owner); err != nil {
			return err
		}
	}
	for _, p := range n.outputs {
		if p.Kind().IsInput() {
			return fmt.Errorf("%w: %s declared as output on node %q", ErrPinRoleMismatch, describePin(p), n.typeID)
		}
		if err := p.attach(owner); err != nil {
			return err
		}
	}
	return nil
}

func newBase(typeID, name string, o *nodeOptions) nodeBase {
	return nodeBase{
		typeID:      typeID,
		name:        name,
		description: o.description,
		category:    o.category,
		pure:        o.pure,
		inputs:      o.inputs,
		outputs:     o.outputs,
	}
}

func collect(opts []NodeOption) *nodeOptions {
	o := &nodeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EntryNode is the designated starting point of a graph. It has output pins
// only; executing it fires its exec_out pin.
type EntryNode struct {
	nodeBase
	execOut *OutputFlowPin
}

// NewEntryNode creates an entry node. The exec_out flow pin is declared
// automatically ahead of any outputs given through WithOutputs.
func NewEntryNode(typeID, name string, opts ...NodeOption) (*EntryNode, error) {
	o := collect(opts)
	if len(o.inputs) > 0 {
		return nil, fmt.Errorf("%w: entry node %q cannot declare input pins", ErrPinRoleMismatch, typeID)
	}
	if o.pure {
		return nil, fmt.Errorf("%w: entry node %q cannot be pure", ErrFlowPinOnFunction, typeID)
	}

	execOut := NewOutputFlowPin(ExecOut, "")
	o.outputs = append([]Pin{execOut}, o.outputs...)

	n := &EntryNode{nodeBase: newBase(typeID, name, o), execOut: execOut}
	if err := n.attachPins(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Kind returns KindEntry.
func (n *EntryNode) Kind() NodeKind { return KindEntry }

// Execute fires the entry node's exec_out pin.
func (n *EntryNode) Execute(ctx context.Context) error {
	return n.execOut.Execute(ctx)
}

// ExecFunc is the body of a function node. It reads its arguments and stores
// its results through the node's pins.
type ExecFunc func(ctx context.Context, n *FunctionNode) error

// FunctionNode computes a single outcome. Impure function nodes are wrapped
// in an exec_in/exec_out pair; pure ones run whenever one of their output
// argument pins is read.
type FunctionNode struct {
	nodeBase
	exec    ExecFunc
	execOut *OutputFlowPin
}

// NewFunctionNode creates a function node running exec. Declaring flow pins
// through WithInputs or WithOutputs fails with ErrFlowPinOnFunction.
func NewFunctionNode(typeID, name string, exec ExecFunc, opts ...NodeOption) (*FunctionNode, error) {
	o := collect(opts)
	for _, p := range append(append([]Pin(nil), o.inputs...), o.outputs...) {
		if p.Kind().IsFlow() {
			return nil, fmt.Errorf("%w: %s on node %q; use a macro node instead", ErrFlowPinOnFunction, describePin(p), typeID)
		}
	}

	n := &FunctionNode{exec: exec}
	if !o.pure {
		n.execOut = NewOutputFlowPin(ExecOut, "")
		execIn := NewInputFlowPin(ExecIn, "", n.run)
		o.inputs = append([]Pin{execIn}, o.inputs...)
		o.outputs = append([]Pin{n.execOut}, o.outputs...)
	}
	n.nodeBase = newBase(typeID, name, o)

	if err := n.attachPins(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Kind returns KindFunction.
func (n *FunctionNode) Kind() NodeKind { return KindFunction }

// Execute runs the node: an impure node runs its body and then fires
// exec_out, a pure node only runs its body.
func (n *FunctionNode) Execute(ctx context.Context) error {
	if n.pure {
		return n.evaluate(ctx)
	}
	return n.run(ctx)
}

// run is bound to exec_in of impure nodes.
func (n *FunctionNode) run(ctx context.Context) error {
	if err := n.evaluate(ctx); err != nil {
		return err
	}
	return n.execOut.Execute(ctx)
}

func (n *FunctionNode) evaluate(ctx context.Context) error {
	if n.graph != nil {
		n.graph.emit(ctx, Event{Type: EventNodeEvaluate, NodeID: n.uniqueID, TypeID: n.typeID})
	}
	if n.exec == nil {
		return nil
	}
	if err := n.exec(ctx, n); err != nil {
		return wrapNodeError(n, err)
	}
	return nil
}

// MacroNode declares its own flow pins to express branching or looping. Its
// input flow pins are bound to routines owning whatever state they need.
type MacroNode struct {
	nodeBase
}

// NewMacroNode creates a macro node from the pins given through WithInputs
// and WithOutputs.
func NewMacroNode(typeID, name string, opts ...NodeOption) (*MacroNode, error) {
	o := collect(opts)
	o.pure = false

	n := &MacroNode{nodeBase: newBase(typeID, name, o)}
	if err := n.attachPins(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Kind returns KindMacro.
func (n *MacroNode) Kind() NodeKind { return KindMacro }

// NodeError attributes an execution failure to the node that raised it.
type NodeError struct {
	NodeID string
	TypeID string
	Err    error
}

func (e *NodeError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("node %s: %v", e.TypeID, e.Err)
	}
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.TypeID, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// wrapNodeError attributes err to n unless a deeper node already claimed it.
func wrapNodeError(n Node, err error) error {
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}
	return &NodeError{NodeID: n.UniqueID(), TypeID: n.TypeID(), Err: err}
}

// WrapNodeError attributes err to n. Macro node routines use it so that
// failures in their own logic name the macro.
func WrapNodeError(n Node, err error) error {
	if err == nil {
		return nil
	}
	return wrapNodeError(n, err)
}

// ArgAs reads the input argument pin id of n, sanitizes the value against
// the pin's declared type and asserts it to T.
func ArgAs[T any](ctx context.Context, n Node, id string) (T, error) {
	var zero T
	p, err := n.Input(id)
	if err != nil {
		return zero, err
	}
	ap, ok := p.(*InputArgumentPin)
	if !ok {
		return zero, fmt.Errorf("%w: pin %q on node %q is %s, not input_argument", ErrPinLookup, id, n.TypeID(), p.Kind())
	}
	return PinValue[T](ctx, ap)
}

// PinValue reads p, sanitizes the value against the pin's declared type and
// asserts it to T. A connected source may publish a looser type than p
// declares; the value is checked against p's own type on read.
func PinValue[T any](ctx context.Context, p *InputArgumentPin) (T, error) {
	var zero T
	v, err := p.Value(ctx)
	if err != nil {
		return zero, err
	}
	v, err = Sanitize(v, p.Type())
	if err != nil {
		return zero, fmt.Errorf("pin %q: %w", p.ID(), err)
	}
	if v == nil && reflect.TypeFor[T]().Kind() == reflect.Interface {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: pin %q expected %T, got %v (%T)", ErrTypeMismatch, p.ID(), zero, v, v)
	}
	return typed, nil
}

// findPin looks id up on both sides of n. Outputs are searched first when
// preferOutput is set, inputs first otherwise.
func findPin(n Node, id string, preferOutput bool) Pin {
	first, second := n.Inputs, n.Outputs
	if preferOutput {
		first, second = second, first
	}
	for _, p := range first() {
		if p.ID() == id {
			return p
		}
	}
	for _, p := range second() {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// FindPin looks a pin up on either side of n, regardless of its role. The
// side named by preferOutput is searched first so that a source lookup finds
// an output and a destination lookup finds an input when both share an id.
func FindPin(n Node, id string, preferOutput bool) (Pin, error) {
	if p := findPin(n, id, preferOutput); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: pin %q not found on node %q (%s)", ErrPinLookup, id, n.UniqueID(), n.TypeID())
}
