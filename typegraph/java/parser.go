package java

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"
)

// ErrSyntax is returned for source files the grammar cannot parse.
var ErrSyntax = errors.New("syntax error")

var typeDeclarationKinds = map[string]typegraph.ClassKind{
	"class_declaration":           typegraph.KindClass,
	"interface_declaration":       typegraph.KindInterface,
	"enum_declaration":            typegraph.KindEnum,
	"record_declaration":          typegraph.KindRecord,
	"annotation_type_declaration": typegraph.KindAnnotation,
}

// ParseFile parses one Java source file.
func ParseFile(path string, src []byte) (*CompilationUnit, error) {
	return ParseFileCtx(context.Background(), path, src)
}

// ParseFileCtx is ParseFile with cancellation.
func ParseFileCtx(ctx context.Context, path string, src []byte) (*CompilationUnit, error) {
	tree, err := parseJava(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := 0
		if bad := findErrorNode(root); bad != nil {
			line = int(bad.StartPoint().Row) + 1
		}
		return nil, fmt.Errorf("%s:%d: %w", path, line, ErrSyntax)
	}

	unit := &CompilationUnit{Path: path}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			unit.Package = parsePackageName(child, src)
		case "import_declaration":
			if imp, ok := parseImport(child, src); ok {
				unit.Imports = append(unit.Imports, imp)
			}
		default:
			if _, ok := typeDeclarationKinds[child.Type()]; ok {
				unit.Types = append(unit.Types, parseTypeDef(child, src))
			}
		}
	}
	return unit, nil
}

func parseJava(ctx context.Context, sourceCode []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsjava.GetLanguage())
	return parser.ParseCtx(ctx, nil, sourceCode)
}

func parsePackageName(node *sitter.Node, src []byte) string {
	if name := findFirstChildOfType(node, "scoped_identifier", "identifier"); name != nil {
		return strings.TrimSpace(name.Content(src))
	}
	return ""
}

func parseImport(node *sitter.Node, src []byte) (Import, bool) {
	nameNode := findFirstChildOfType(node, "scoped_identifier", "identifier")
	if nameNode == nil {
		return Import{}, false
	}
	return Import{
		Path:     strings.TrimSpace(nameNode.Content(src)),
		Wildcard: hasChildOfType(node, "asterisk"),
		Static:   hasTokenChild(node, "static"),
	}, true
}

func parseTypeDef(node *sitter.Node, src []byte) *TypeDef {
	def := &TypeDef{
		Kind:       typeDeclarationKinds[node.Type()],
		Modifiers:  parseModifiers(node),
		TypeParams: parseTypeParams(findFirstChildOfType(node, "type_parameters"), src),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		def.Name = strings.TrimSpace(name.Content(src))
	}

	if super := findFirstChildOfType(node, "superclass"); super != nil {
		if t := firstTypeChild(super); t != nil {
			def.Superclass = parseTypeRef(t, src)
		}
	}
	for _, listType := range []string{"super_interfaces", "extends_interfaces"} {
		if list := findFirstChildOfType(node, listType); list != nil {
			def.Interfaces = append(def.Interfaces, parseTypeList(list, src)...)
		}
	}

	if def.Kind == typegraph.KindRecord {
		if params := findFirstChildOfType(node, "formal_parameters"); params != nil {
			for _, p := range parseParams(params, src) {
				def.Components = append(def.Components, FieldDef{Name: p.name, Type: p.typ})
			}
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		parseBody(def, body, src)
	}
	return def
}

func parseBody(def *TypeDef, body *sitter.Node, src []byte) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "field_declaration", "constant_declaration":
			def.Fields = append(def.Fields, parseFields(child, src)...)
		case "method_declaration":
			def.Methods = append(def.Methods, parseMethod(child, src))
		case "annotation_type_element_declaration":
			def.Methods = append(def.Methods, parseAnnotationElement(child, src))
		case "constructor_declaration":
			def.Constructors = append(def.Constructors, parseMethod(child, src))
		case "compact_constructor_declaration":
			compact := MethodDef{Modifiers: parseModifiers(child), HasBody: true}
			def.CompactConstructor = &compact
		case "enum_constant":
			if name := child.ChildByFieldName("name"); name != nil {
				def.EnumConstants = append(def.EnumConstants, strings.TrimSpace(name.Content(src)))
			}
		case "enum_body_declarations":
			parseBody(def, child, src)
		default:
			if _, ok := typeDeclarationKinds[child.Type()]; ok {
				def.Nested = append(def.Nested, parseTypeDef(child, src))
			}
		}
	}
}

func parseFields(node *sitter.Node, src []byte) []FieldDef {
	mods := parseModifiers(node)
	base := parseTypeRef(node.ChildByFieldName("type"), src)

	var fields []FieldDef
	for i := 0; i < int(node.NamedChildCount()); i++ {
		declarator := node.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		name := declarator.ChildByFieldName("name")
		if name == nil {
			continue
		}
		typ := base
		typ.Dims += countDims(declarator.ChildByFieldName("dimensions"), src)
		fields = append(fields, FieldDef{
			Name:      strings.TrimSpace(name.Content(src)),
			Modifiers: mods,
			Type:      typ,
		})
	}
	return fields
}

func parseMethod(node *sitter.Node, src []byte) MethodDef {
	m := MethodDef{
		Modifiers:  parseModifiers(node),
		TypeParams: parseTypeParams(findFirstChildOfType(node, "type_parameters"), src),
		HasBody:    node.ChildByFieldName("body") != nil,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		m.Name = strings.TrimSpace(name.Content(src))
	}
	if t := node.ChildByFieldName("type"); t != nil {
		m.Returns = parseTypeRef(t, src)
		m.Returns.Dims += countDims(node.ChildByFieldName("dimensions"), src)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for _, p := range parseParams(params, src) {
			m.Params = append(m.Params, p.typ)
		}
	}
	if throws := findFirstChildOfType(node, "throws"); throws != nil {
		m.Throws = parseTypeList(throws, src)
	}
	return m
}

func parseAnnotationElement(node *sitter.Node, src []byte) MethodDef {
	m := MethodDef{Modifiers: parseModifiers(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		m.Name = strings.TrimSpace(name.Content(src))
	}
	if t := node.ChildByFieldName("type"); t != nil {
		m.Returns = parseTypeRef(t, src)
		m.Returns.Dims += countDims(node.ChildByFieldName("dimensions"), src)
	}
	return m
}

type param struct {
	name string
	typ  TypeRef
}

func parseParams(node *sitter.Node, src []byte) []param {
	var params []param
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "formal_parameter":
			p := param{typ: parseTypeRef(child.ChildByFieldName("type"), src)}
			p.typ.Dims += countDims(child.ChildByFieldName("dimensions"), src)
			if name := child.ChildByFieldName("name"); name != nil {
				p.name = strings.TrimSpace(name.Content(src))
			}
			params = append(params, p)
		case "spread_parameter":
			t := firstTypeChild(child)
			if t == nil {
				continue
			}
			p := param{typ: parseTypeRef(t, src)}
			p.typ.Dims++
			if declarator := findFirstChildOfType(child, "variable_declarator"); declarator != nil {
				if name := declarator.ChildByFieldName("name"); name != nil {
					p.name = strings.TrimSpace(name.Content(src))
				}
			}
			params = append(params, p)
		}
	}
	return params
}

func parseTypeParams(node *sitter.Node, src []byte) []TypeParam {
	if node == nil {
		return nil
	}
	var params []TypeParam
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "type_parameter" {
			continue
		}
		name := findFirstChildOfType(child, "type_identifier", "identifier")
		if name == nil {
			continue
		}
		tp := TypeParam{Name: strings.TrimSpace(name.Content(src))}
		if bound := findFirstChildOfType(child, "type_bound"); bound != nil {
			if t := firstTypeChild(bound); t != nil {
				tp.Bound = parseTypeRef(t, src)
			}
		}
		params = append(params, tp)
	}
	return params
}

// parseTypeList reads the types of a super_interfaces, extends_interfaces,
// throws or type_list node.
func parseTypeList(node *sitter.Node, src []byte) []TypeRef {
	if list := findFirstChildOfType(node, "type_list"); list != nil {
		node = list
	}
	var refs []TypeRef
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if isTypeNode(child) {
			refs = append(refs, parseTypeRef(child, src))
		}
	}
	return refs
}

// parseTypeRef erases generic arguments and annotations from a type node.
func parseTypeRef(node *sitter.Node, src []byte) TypeRef {
	if node == nil {
		return TypeRef{}
	}
	switch node.Type() {
	case "array_type":
		ref := parseTypeRef(node.ChildByFieldName("element"), src)
		ref.Dims += countDims(node.ChildByFieldName("dimensions"), src)
		return ref
	case "generic_type":
		return parseTypeRef(findFirstChildOfType(node, "type_identifier", "scoped_type_identifier"), src)
	case "annotated_type":
		return parseTypeRef(firstTypeChild(node), src)
	case "scoped_type_identifier":
		var parts []string
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if !isTypeNode(child) {
				continue
			}
			parts = append(parts, parseTypeRef(child, src).Name)
		}
		return TypeRef{Name: strings.Join(parts, ".")}
	default:
		return TypeRef{Name: strings.TrimSpace(node.Content(src))}
	}
}

func isTypeNode(node *sitter.Node) bool {
	switch node.Type() {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type", "annotated_type":
		return true
	}
	return false
}

func firstTypeChild(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); isTypeNode(child) {
			return child
		}
	}
	return nil
}

func countDims(node *sitter.Node, src []byte) int {
	if node == nil {
		return 0
	}
	return strings.Count(node.Content(src), "[")
}

func parseModifiers(node *sitter.Node) Modifiers {
	var mods Modifiers
	modifiers := findFirstChildOfType(node, "modifiers")
	if modifiers == nil {
		return mods
	}
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		switch modifiers.Child(i).Type() {
		case "public":
			mods.Access = typegraph.VisibilityPublic
		case "protected":
			mods.Access = typegraph.VisibilityProtected
		case "private":
			mods.Access = typegraph.VisibilityPrivate
		case "static":
			mods.Static = true
		case "final":
			mods.Final = true
		case "abstract":
			mods.Abstract = true
		case "default":
			mods.Default = true
		}
	}
	return mods
}

func hasTokenChild(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

func hasChildOfType(node *sitter.Node, nodeType string) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Type() == nodeType {
			return true
		}
		if hasChildOfType(child, nodeType) {
			return true
		}
	}
	return false
}

func findFirstChildOfType(node *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

func findErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
