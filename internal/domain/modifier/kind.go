package modifier

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the aggregation category a modifier belongs to. The set is closed.
type Kind int

const (
	KindAdd Kind = iota
	KindPriorityAdd
	KindMul
	KindPriorityMul
	KindAfterAdd
	KindOverride
	KindClamp

	kindCount
)

var kindNames = [kindCount]string{
	KindAdd:         "Add",
	KindPriorityAdd: "PriorityAdd",
	KindMul:         "Mul",
	KindPriorityMul: "PriorityMul",
	KindAfterAdd:    "AfterAdd",
	KindOverride:    "Override",
	KindClamp:       "Clamp",
}

// Kinds returns every kind in declaration order
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Valid reports whether k is one of the seven kinds
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a kind by name
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown modifier kind %q", name)
}

// MarshalJSON writes the kind as its name
func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid modifier kind %d", int(k))
	}
	return json.Marshal(kindNames[k])
}

// UnmarshalJSON accepts either the kind name or its ordinal
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseKind(name)
		if err != nil {
			return err
		}
		*k = parsed
		return nil
	}

	ordinal, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("modifier kind must be a name or ordinal, got %s", string(data))
	}
	if !Kind(ordinal).Valid() {
		return fmt.Errorf("modifier kind ordinal %d out of range", ordinal)
	}
	*k = Kind(ordinal)
	return nil
}
