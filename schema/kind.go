package schema

// Kind discriminates the variants of Type.
type Kind uint8

const (
	KindSigned Kind = iota
	KindUnsigned
	KindSignedNormalized
	KindUnsignedNormalized
	KindFloat
	KindArray
	KindString
	KindBoolSet
	KindVector
	KindMatrix
	KindRecord
	KindPacked
)

var kindNames = [...]string{
	KindSigned:             "sint",
	KindUnsigned:           "uint",
	KindSignedNormalized:   "snorm",
	KindUnsignedNormalized: "unorm",
	KindFloat:              "float",
	KindArray:              "array",
	KindString:             "string",
	KindBoolSet:            "boolset",
	KindVector:             "vector",
	KindMatrix:             "matrix",
	KindRecord:             "record",
	KindPacked:             "packed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsScalar() bool {
	return k <= KindFloat
}

func (k Kind) IsInteger() bool {
	return k <= KindUnsignedNormalized
}

func (k Kind) IsNormalized() bool {
	return k == KindSignedNormalized || k == KindUnsignedNormalized
}

func (k Kind) IsSigned() bool {
	return k == KindSigned || k == KindSignedNormalized
}
