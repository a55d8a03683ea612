package builtin

// Node type ids of the catalog.
const (
	TypeBegin      = "pinflow.builtin.BeginNode"
	TypeConsoleLog = "pinflow.builtin.ConsoleLogNode"

	// Control flow.
	TypeExecReroute = "pinflow.builtin.ExecRerouteNode"
	TypeBranch      = "pinflow.builtin.BranchNode"
	TypeForLoop     = "pinflow.builtin.ForLoopNode"
	TypeForEachLoop = "pinflow.builtin.ForEachLoopNode"

	// Variables and pass-through.
	TypeReroute       = "pinflow.builtin.RerouteNode"
	TypeReadVariable  = "pinflow.builtin.ReadVariableNode"
	TypeWriteVariable = "pinflow.builtin.WriteVariableNode"

	// Math.
	TypeAdd        = "pinflow.builtin.AddNode"
	TypeSubtract   = "pinflow.builtin.SubtractNode"
	TypeMultiply   = "pinflow.builtin.MultiplyNode"
	TypeDivide     = "pinflow.builtin.DivideNode"
	TypeModulo     = "pinflow.builtin.ModuloNode"
	TypePower      = "pinflow.builtin.PowerNode"
	TypeNegate     = "pinflow.builtin.NegateNode"
	TypeAbs        = "pinflow.builtin.AbsNode"
	TypeFloor      = "pinflow.builtin.FloorNode"
	TypeCeil       = "pinflow.builtin.CeilNode"
	TypeRound      = "pinflow.builtin.RoundNode"
	TypeMin        = "pinflow.builtin.MinNode"
	TypeMax        = "pinflow.builtin.MaxNode"
	TypeClamp      = "pinflow.builtin.ClampNode"
	TypeLerp       = "pinflow.builtin.LerpNode"
	TypeSign       = "pinflow.builtin.SignNode"
	TypeIsPositive = "pinflow.builtin.IsPositiveNode"
	TypeIsNegative = "pinflow.builtin.IsNegativeNode"
	TypeIsZero     = "pinflow.builtin.IsZeroNode"

	// Comparison.
	TypeIsEqual      = "pinflow.builtin.IsEqualNode"
	TypeEqual        = "pinflow.builtin.EqualNode"
	TypeNotEqual     = "pinflow.builtin.NotEqualNode"
	TypeGreater      = "pinflow.builtin.GreaterNode"
	TypeGreaterEqual = "pinflow.builtin.GreaterEqualNode"
	TypeLess         = "pinflow.builtin.LessNode"
	TypeLessEqual    = "pinflow.builtin.LessEqualNode"

	// Logic.
	TypeAnd  = "pinflow.builtin.AndNode"
	TypeOr   = "pinflow.builtin.OrNode"
	TypeNot  = "pinflow.builtin.NotNode"
	TypeXor  = "pinflow.builtin.XorNode"
	TypeNand = "pinflow.builtin.NandNode"
	TypeIf   = "pinflow.builtin.IfNode"

	// Conversions and constants.
	TypeIntToString = "pinflow.builtin.IntToStringNode"
	TypeConstantInt = "pinflow.builtin.ConstantIntNode"

	// Data and scripting.
	TypeJSONPath = "pinflow.builtin.JSONPathNode"
	TypeLua      = "pinflow.builtin.LuaExpressionNode"
)

// Pin ids shared across the catalog.
const (
	pinResult    = "result"
	pinValue     = "value"
	pinA         = "a"
	pinB         = "b"
	pinCondition = "condition"
	pinExecBody  = "exec_body"
	pinExecBreak = "exec_break"
)
