package pinflow

import "errors"

// Common errors. Callers match them with errors.Is; the returned errors wrap
// them with the offending node, pin or value.
var (
	// ErrTypeMismatch is returned when a value cannot be sanitized to a pin or variable type.
	ErrTypeMismatch = errors.New("pinflow: type mismatch")

	// ErrUnknownNodeType is returned when a type id is not registered.
	ErrUnknownNodeType = errors.New("pinflow: unknown node type")

	// ErrDuplicateNodeType is returned when a type id is registered twice.
	ErrDuplicateNodeType = errors.New("pinflow: node type already registered")

	// ErrMissingEntryNode is returned when a graph has no node of the entry type.
	ErrMissingEntryNode = errors.New("pinflow: entry node not found")

	// ErrAmbiguousEntryNode is returned when a graph has more than one node of the entry type.
	ErrAmbiguousEntryNode = errors.New("pinflow: more than one entry node")

	// ErrUnknownVariableType is returned when a variable declares a type name outside the primitive namespace.
	ErrUnknownVariableType = errors.New("pinflow: unknown variable type")

	// ErrPinLookup is returned when a node or pin id does not resolve.
	ErrPinLookup = errors.New("pinflow: pin lookup failed")

	// ErrPinRoleMismatch is returned when two pins of incompatible roles are connected.
	ErrPinRoleMismatch = errors.New("pinflow: pin role mismatch")

	// ErrInvalidLoopBounds is returned by loops with a zero step or a step whose sign disagrees with end-start.
	ErrInvalidLoopBounds = errors.New("pinflow: invalid loop bounds")

	// ErrFlowPinOnFunction is returned when a function node declares its own flow pins.
	ErrFlowPinOnFunction = errors.New("pinflow: function nodes cannot declare flow pins")

	// ErrPinOwned is returned when a pin is attached to a second node.
	ErrPinOwned = errors.New("pinflow: pin already belongs to a node")

	// ErrDuplicatePin is returned when a node declares the same pin id twice on one side.
	ErrDuplicatePin = errors.New("pinflow: duplicate pin id")

	// ErrNodeNotFound is returned when a unique id is not part of a graph.
	ErrNodeNotFound = errors.New("pinflow: node not found")

	// ErrDuplicateNode is returned when two nodes of one graph share a unique id.
	ErrDuplicateNode = errors.New("pinflow: duplicate node unique id")

	// ErrVariableNotFound is returned when a variable name is not part of a graph.
	ErrVariableNotFound = errors.New("pinflow: variable not found")

	// ErrDuplicateVariable is returned when two variables of one graph share a name.
	ErrDuplicateVariable = errors.New("pinflow: duplicate variable name")

	// ErrNoEntryNode is returned when a graph is built without an entry node.
	ErrNoEntryNode = errors.New("pinflow: no entry node defined")
)
