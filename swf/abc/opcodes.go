package abc

import "fmt"

// Opcode is a single AVM2 instruction byte.
type Opcode uint8

const (
	OpBkpt           Opcode = 0x01
	OpNop            Opcode = 0x02
	OpThrow          Opcode = 0x03
	OpGetSuper       Opcode = 0x04
	OpSetSuper       Opcode = 0x05
	OpDxns           Opcode = 0x06
	OpDxnsLate       Opcode = 0x07
	OpKill           Opcode = 0x08
	OpLabel          Opcode = 0x09
	OpIfNlt          Opcode = 0x0c
	OpIfNle          Opcode = 0x0d
	OpIfNgt          Opcode = 0x0e
	OpIfNge          Opcode = 0x0f
	OpJump           Opcode = 0x10
	OpIfTrue         Opcode = 0x11
	OpIfFalse        Opcode = 0x12
	OpIfEq           Opcode = 0x13
	OpIfNe           Opcode = 0x14
	OpIfLt           Opcode = 0x15
	OpIfLe           Opcode = 0x16
	OpIfGt           Opcode = 0x17
	OpIfGe           Opcode = 0x18
	OpIfStrictEq     Opcode = 0x19
	OpIfStrictNe     Opcode = 0x1a
	OpLookupSwitch   Opcode = 0x1b
	OpPushWith       Opcode = 0x1c
	OpPopScope       Opcode = 0x1d
	OpNextName       Opcode = 0x1e
	OpHasNext        Opcode = 0x1f
	OpPushNull       Opcode = 0x20
	OpPushUndefined  Opcode = 0x21
	OpNextValue      Opcode = 0x23
	OpPushByte       Opcode = 0x24
	OpPushShort      Opcode = 0x25
	OpPushTrue       Opcode = 0x26
	OpPushFalse      Opcode = 0x27
	OpPushNaN        Opcode = 0x28
	OpPop            Opcode = 0x29
	OpDup            Opcode = 0x2a
	OpSwap           Opcode = 0x2b
	OpPushString     Opcode = 0x2c
	OpPushInt        Opcode = 0x2d
	OpPushUint       Opcode = 0x2e
	OpPushDouble     Opcode = 0x2f
	OpPushScope      Opcode = 0x30
	OpPushNamespace  Opcode = 0x31
	OpHasNext2       Opcode = 0x32
	OpLi8            Opcode = 0x35
	OpLi16           Opcode = 0x36
	OpLi32           Opcode = 0x37
	OpLf32           Opcode = 0x38
	OpLf64           Opcode = 0x39
	OpSi8            Opcode = 0x3a
	OpSi16           Opcode = 0x3b
	OpSi32           Opcode = 0x3c
	OpSf32           Opcode = 0x3d
	OpSf64           Opcode = 0x3e
	OpNewFunction    Opcode = 0x40
	OpCall           Opcode = 0x41
	OpConstruct      Opcode = 0x42
	OpCallMethod     Opcode = 0x43
	OpCallStatic     Opcode = 0x44
	OpCallSuper      Opcode = 0x45
	OpCallProperty   Opcode = 0x46
	OpReturnVoid     Opcode = 0x47
	OpReturnValue    Opcode = 0x48
	OpConstructSuper Opcode = 0x49
	OpConstructProp  Opcode = 0x4a
	OpCallSuperId    Opcode = 0x4b
	OpCallPropLex    Opcode = 0x4c
	OpCallInterface  Opcode = 0x4d
	OpCallSuperVoid  Opcode = 0x4e
	OpCallPropVoid   Opcode = 0x4f
	OpSxi1           Opcode = 0x50
	OpSxi8           Opcode = 0x51
	OpSxi16          Opcode = 0x52
	OpApplyType      Opcode = 0x53
	OpNewObject      Opcode = 0x55
	OpNewArray       Opcode = 0x56
	OpNewActivation  Opcode = 0x57
	OpNewClass       Opcode = 0x58
	OpGetDescendants Opcode = 0x59
	OpNewCatch       Opcode = 0x5a
	OpFindPropStrict Opcode = 0x5d
	OpFindProperty   Opcode = 0x5e
	OpFindDef        Opcode = 0x5f
	OpGetLex         Opcode = 0x60
	OpSetProperty    Opcode = 0x61
	OpGetLocal       Opcode = 0x62
	OpSetLocal       Opcode = 0x63
	OpGetGlobalScope Opcode = 0x64
	OpGetScopeObject Opcode = 0x65
	OpGetProperty    Opcode = 0x66
	OpGetOuterScope  Opcode = 0x67
	OpInitProperty   Opcode = 0x68
	OpDeleteProperty Opcode = 0x6a
	OpGetSlot        Opcode = 0x6c
	OpSetSlot        Opcode = 0x6d
	OpGetGlobalSlot  Opcode = 0x6e
	OpSetGlobalSlot  Opcode = 0x6f
	OpConvertS       Opcode = 0x70
	OpEscXElem       Opcode = 0x71
	OpEscXAttr       Opcode = 0x72
	OpConvertI       Opcode = 0x73
	OpConvertU       Opcode = 0x74
	OpConvertD       Opcode = 0x75
	OpConvertB       Opcode = 0x76
	OpConvertO       Opcode = 0x77
	OpCheckFilter    Opcode = 0x78
	OpCoerce         Opcode = 0x80
	OpCoerceB        Opcode = 0x81
	OpCoerceA        Opcode = 0x82
	OpCoerceI        Opcode = 0x83
	OpCoerceD        Opcode = 0x84
	OpCoerceS        Opcode = 0x85
	OpAsType         Opcode = 0x86
	OpAsTypeLate     Opcode = 0x87
	OpCoerceU        Opcode = 0x88
	OpCoerceO        Opcode = 0x89
	OpNegate         Opcode = 0x90
	OpIncrement      Opcode = 0x91
	OpIncLocal       Opcode = 0x92
	OpDecrement      Opcode = 0x93
	OpDecLocal       Opcode = 0x94
	OpTypeOf         Opcode = 0x95
	OpNot            Opcode = 0x96
	OpBitNot         Opcode = 0x97
	OpAdd            Opcode = 0xa0
	OpSubtract       Opcode = 0xa1
	OpMultiply       Opcode = 0xa2
	OpDivide         Opcode = 0xa3
	OpModulo         Opcode = 0xa4
	OpLShift         Opcode = 0xa5
	OpRShift         Opcode = 0xa6
	OpURShift        Opcode = 0xa7
	OpBitAnd         Opcode = 0xa8
	OpBitOr          Opcode = 0xa9
	OpBitXor         Opcode = 0xaa
	OpEquals         Opcode = 0xab
	OpStrictEquals   Opcode = 0xac
	OpLessThan       Opcode = 0xad
	OpLessEquals     Opcode = 0xae
	OpGreaterThan    Opcode = 0xaf
	OpGreaterEquals  Opcode = 0xb0
	OpInstanceOf     Opcode = 0xb1
	OpIsType         Opcode = 0xb2
	OpIsTypeLate     Opcode = 0xb3
	OpIn             Opcode = 0xb4
	OpIncrementI     Opcode = 0xc0
	OpDecrementI     Opcode = 0xc1
	OpIncLocalI      Opcode = 0xc2
	OpDecLocalI      Opcode = 0xc3
	OpNegateI        Opcode = 0xc4
	OpAddI           Opcode = 0xc5
	OpSubtractI      Opcode = 0xc6
	OpMultiplyI      Opcode = 0xc7
	OpGetLocal0      Opcode = 0xd0
	OpGetLocal1      Opcode = 0xd1
	OpGetLocal2      Opcode = 0xd2
	OpGetLocal3      Opcode = 0xd3
	OpSetLocal0      Opcode = 0xd4
	OpSetLocal1      Opcode = 0xd5
	OpSetLocal2      Opcode = 0xd6
	OpSetLocal3      Opcode = 0xd7
	OpDebug          Opcode = 0xef
	OpDebugLine      Opcode = 0xf0
	OpDebugFile      Opcode = 0xf1
	OpBkptLine       Opcode = 0xf2
	OpTimestamp      Opcode = 0xf3
)

// operand describes how one operand is encoded after the opcode byte.
type operand uint8

const (
	argU8 operand = iota + 1
	argU30
	argS24
)

type opInfo struct {
	name     string
	operands []operand
}

var (
	none   = []operand{}
	u8     = []operand{argU8}
	u30    = []operand{argU30}
	u30u30 = []operand{argU30, argU30}
	s24    = []operand{argS24}
	// debug: debug_type u8, index u30, reg u8, extra u30
	debugArgs = []operand{argU8, argU30, argU8, argU30}
)

// opcodes holds the operand layout of every known opcode. lookupswitch has a
// variable layout and is handled by the decoder directly.
var opcodes = map[Opcode]opInfo{
	OpBkpt:           {"bkpt", none},
	OpNop:            {"nop", none},
	OpThrow:          {"throw", none},
	OpGetSuper:       {"getsuper", u30},
	OpSetSuper:       {"setsuper", u30},
	OpDxns:           {"dxns", u30},
	OpDxnsLate:       {"dxnslate", none},
	OpKill:           {"kill", u30},
	OpLabel:          {"label", none},
	OpIfNlt:          {"ifnlt", s24},
	OpIfNle:          {"ifnle", s24},
	OpIfNgt:          {"ifngt", s24},
	OpIfNge:          {"ifnge", s24},
	OpJump:           {"jump", s24},
	OpIfTrue:         {"iftrue", s24},
	OpIfFalse:        {"iffalse", s24},
	OpIfEq:           {"ifeq", s24},
	OpIfNe:           {"ifne", s24},
	OpIfLt:           {"iflt", s24},
	OpIfLe:           {"ifle", s24},
	OpIfGt:           {"ifgt", s24},
	OpIfGe:           {"ifge", s24},
	OpIfStrictEq:     {"ifstricteq", s24},
	OpIfStrictNe:     {"ifstrictne", s24},
	OpLookupSwitch:   {"lookupswitch", nil},
	OpPushWith:       {"pushwith", none},
	OpPopScope:       {"popscope", none},
	OpNextName:       {"nextname", none},
	OpHasNext:        {"hasnext", none},
	OpPushNull:       {"pushnull", none},
	OpPushUndefined:  {"pushundefined", none},
	OpNextValue:      {"nextvalue", none},
	OpPushByte:       {"pushbyte", u8},
	OpPushShort:      {"pushshort", u30},
	OpPushTrue:       {"pushtrue", none},
	OpPushFalse:      {"pushfalse", none},
	OpPushNaN:        {"pushnan", none},
	OpPop:            {"pop", none},
	OpDup:            {"dup", none},
	OpSwap:           {"swap", none},
	OpPushString:     {"pushstring", u30},
	OpPushInt:        {"pushint", u30},
	OpPushUint:       {"pushuint", u30},
	OpPushDouble:     {"pushdouble", u30},
	OpPushScope:      {"pushscope", none},
	OpPushNamespace:  {"pushnamespace", u30},
	OpHasNext2:       {"hasnext2", u30u30},
	OpLi8:            {"li8", none},
	OpLi16:           {"li16", none},
	OpLi32:           {"li32", none},
	OpLf32:           {"lf32", none},
	OpLf64:           {"lf64", none},
	OpSi8:            {"si8", none},
	OpSi16:           {"si16", none},
	OpSi32:           {"si32", none},
	OpSf32:           {"sf32", none},
	OpSf64:           {"sf64", none},
	OpNewFunction:    {"newfunction", u30},
	OpCall:           {"call", u30},
	OpConstruct:      {"construct", u30},
	OpCallMethod:     {"callmethod", u30u30},
	OpCallStatic:     {"callstatic", u30u30},
	OpCallSuper:      {"callsuper", u30u30},
	OpCallProperty:   {"callproperty", u30u30},
	OpReturnVoid:     {"returnvoid", none},
	OpReturnValue:    {"returnvalue", none},
	OpConstructSuper: {"constructsuper", u30},
	OpConstructProp:  {"constructprop", u30u30},
	OpCallSuperId:    {"callsuperid", none},
	OpCallPropLex:    {"callproplex", u30u30},
	OpCallInterface:  {"callinterface", none},
	OpCallSuperVoid:  {"callsupervoid", u30u30},
	OpCallPropVoid:   {"callpropvoid", u30u30},
	OpSxi1:           {"sxi1", none},
	OpSxi8:           {"sxi8", none},
	OpSxi16:          {"sxi16", none},
	OpApplyType:      {"applytype", u30},
	OpNewObject:      {"newobject", u30},
	OpNewArray:       {"newarray", u30},
	OpNewActivation:  {"newactivation", none},
	OpNewClass:       {"newclass", u30},
	OpGetDescendants: {"getdescendants", u30},
	OpNewCatch:       {"newcatch", u30},
	OpFindPropStrict: {"findpropstrict", u30},
	OpFindProperty:   {"findproperty", u30},
	OpFindDef:        {"finddef", u30},
	OpGetLex:         {"getlex", u30},
	OpSetProperty:    {"setproperty", u30},
	OpGetLocal:       {"getlocal", u30},
	OpSetLocal:       {"setlocal", u30},
	OpGetGlobalScope: {"getglobalscope", none},
	OpGetScopeObject: {"getscopeobject", u8},
	OpGetProperty:    {"getproperty", u30},
	OpGetOuterScope:  {"getouterscope", u30},
	OpInitProperty:   {"initproperty", u30},
	OpDeleteProperty: {"deleteproperty", u30},
	OpGetSlot:        {"getslot", u30},
	OpSetSlot:        {"setslot", u30},
	OpGetGlobalSlot:  {"getglobalslot", u30},
	OpSetGlobalSlot:  {"setglobalslot", u30},
	OpConvertS:       {"convert_s", none},
	OpEscXElem:       {"esc_xelem", none},
	OpEscXAttr:       {"esc_xattr", none},
	OpConvertI:       {"convert_i", none},
	OpConvertU:       {"convert_u", none},
	OpConvertD:       {"convert_d", none},
	OpConvertB:       {"convert_b", none},
	OpConvertO:       {"convert_o", none},
	OpCheckFilter:    {"checkfilter", none},
	OpCoerce:         {"coerce", u30},
	OpCoerceB:        {"coerce_b", none},
	OpCoerceA:        {"coerce_a", none},
	OpCoerceI:        {"coerce_i", none},
	OpCoerceD:        {"coerce_d", none},
	OpCoerceS:        {"coerce_s", none},
	OpAsType:         {"astype", u30},
	OpAsTypeLate:     {"astypelate", none},
	OpCoerceU:        {"coerce_u", none},
	OpCoerceO:        {"coerce_o", none},
	OpNegate:         {"negate", none},
	OpIncrement:      {"increment", none},
	OpIncLocal:       {"inclocal", u30},
	OpDecrement:      {"decrement", none},
	OpDecLocal:       {"declocal", u30},
	OpTypeOf:         {"typeof", none},
	OpNot:            {"not", none},
	OpBitNot:         {"bitnot", none},
	OpAdd:            {"add", none},
	OpSubtract:       {"subtract", none},
	OpMultiply:       {"multiply", none},
	OpDivide:         {"divide", none},
	OpModulo:         {"modulo", none},
	OpLShift:         {"lshift", none},
	OpRShift:         {"rshift", none},
	OpURShift:        {"urshift", none},
	OpBitAnd:         {"bitand", none},
	OpBitOr:          {"bitor", none},
	OpBitXor:         {"bitxor", none},
	OpEquals:         {"equals", none},
	OpStrictEquals:   {"strictequals", none},
	OpLessThan:       {"lessthan", none},
	OpLessEquals:     {"lessequals", none},
	OpGreaterThan:    {"greaterthan", none},
	OpGreaterEquals:  {"greaterequals", none},
	OpInstanceOf:     {"instanceof", none},
	OpIsType:         {"istype", u30},
	OpIsTypeLate:     {"istypelate", none},
	OpIn:             {"in", none},
	OpIncrementI:     {"increment_i", none},
	OpDecrementI:     {"decrement_i", none},
	OpIncLocalI:      {"inclocal_i", u30},
	OpDecLocalI:      {"declocal_i", u30},
	OpNegateI:        {"negate_i", none},
	OpAddI:           {"add_i", none},
	OpSubtractI:      {"subtract_i", none},
	OpMultiplyI:      {"multiply_i", none},
	OpGetLocal0:      {"getlocal0", none},
	OpGetLocal1:      {"getlocal1", none},
	OpGetLocal2:      {"getlocal2", none},
	OpGetLocal3:      {"getlocal3", none},
	OpSetLocal0:      {"setlocal0", none},
	OpSetLocal1:      {"setlocal1", none},
	OpSetLocal2:      {"setlocal2", none},
	OpSetLocal3:      {"setlocal3", none},
	OpDebug:          {"debug", debugArgs},
	OpDebugLine:      {"debugline", u30},
	OpDebugFile:      {"debugfile", u30},
	OpBkptLine:       {"bkptline", u30},
	OpTimestamp:      {"timestamp", none},
}

func (op Opcode) String() string {
	if info, ok := opcodes[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op_0x%02x", uint8(op))
}

// Known reports whether the decoder understands op.
func (op Opcode) Known() bool {
	_, ok := opcodes[op]
	return ok
}
