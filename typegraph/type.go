package typegraph

import "strings"

const (
	// ObjectTypeName is the root of every reference type hierarchy.
	ObjectTypeName = "java.lang.Object"
	// VoidTypeName is the return type of methods that return nothing.
	VoidTypeName = "void"
)

var primitiveDescriptors = map[string]string{
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
	"void":    "V",
}

// widening lists the primitive types each primitive can be widened to
// in an invocation context.
var widening = map[string][]string{
	"byte":  {"short", "int", "long", "float", "double"},
	"short": {"int", "long", "float", "double"},
	"char":  {"int", "long", "float", "double"},
	"int":   {"long", "float", "double"},
	"long":  {"float", "double"},
	"float": {"double"},
}

// Type is an erased type reference: a primitive keyword or a qualified
// class name, plus array dimensions.
type Type struct {
	Name string `yaml:"name"`
	Dims int    `yaml:"dims,omitempty"`
}

// NewType returns the non-array type with the given name.
func NewType(name string) Type {
	return Type{Name: name}
}

// ArrayOf returns t with dims extra array dimensions.
func ArrayOf(t Type, dims int) Type {
	return Type{Name: t.Name, Dims: t.Dims + dims}
}

// Void is the void return type.
func Void() Type {
	return Type{Name: VoidTypeName}
}

// IsPrimitiveName reports whether name is a primitive keyword (including void).
func IsPrimitiveName(name string) bool {
	_, ok := primitiveDescriptors[name]
	return ok
}

// IsVoid reports whether t is void.
func (t Type) IsVoid() bool {
	return t.Dims == 0 && t.Name == VoidTypeName
}

// IsZero reports whether t was never set.
func (t Type) IsZero() bool {
	return t.Name == ""
}

// IsPrimitive reports whether t is a primitive value type. Arrays of
// primitives are references.
func (t Type) IsPrimitive() bool {
	return t.Dims == 0 && IsPrimitiveName(t.Name)
}

// IsReference reports whether t is a class, interface or array type.
func (t Type) IsReference() bool {
	return !t.IsPrimitive()
}

// String renders t in source form, e.g. "java.lang.String[]".
func (t Type) String() string {
	return t.Name + strings.Repeat("[]", t.Dims)
}

// Descriptor renders t in JVM descriptor form, e.g. "[Ljava/lang/String;".
// Nested classes are separated with '$'; the package part ends at the first
// segment that starts with an upper-case letter.
func (t Type) Descriptor() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("[", t.Dims))
	if d, ok := primitiveDescriptors[t.Name]; ok {
		b.WriteString(d)
		return b.String()
	}
	b.WriteString("L")
	b.WriteString(binaryName(t.Name))
	b.WriteString(";")
	return b.String()
}

// ParamsDescriptor renders a parameter list, e.g. "(ILjava/lang/String;)".
func ParamsDescriptor(params []Type) string {
	var b strings.Builder
	b.WriteString("(")
	for _, p := range params {
		b.WriteString(p.Descriptor())
	}
	b.WriteString(")")
	return b.String()
}

func binaryName(qualifiedName string) string {
	parts := strings.Split(qualifiedName, ".")
	classStart := len(parts) - 1
	for i, part := range parts {
		if part != "" && part[0] >= 'A' && part[0] <= 'Z' {
			classStart = i
			break
		}
	}
	pkg := strings.Join(parts[:classStart], "/")
	cls := strings.Join(parts[classStart:], "$")
	if pkg == "" {
		return cls
	}
	return pkg + "/" + cls
}

func primitiveWidens(from, to string) bool {
	for _, candidate := range widening[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// PackageOf returns the package part of a qualified class name using the
// same upper-case heuristic as Descriptor.
func PackageOf(qualifiedName string) string {
	bin := binaryName(qualifiedName)
	if i := strings.LastIndex(bin, "/"); i >= 0 {
		return strings.ReplaceAll(bin[:i], "/", ".")
	}
	return ""
}
