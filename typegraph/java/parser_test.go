package java

import (
	"testing"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapeSource = `package com.example.api;

import java.util.List;
import java.io.*;
import static java.util.Collections.emptyList;
import com.example.util.Helper;

public abstract class Shape<T extends Comparable<T>> implements Serializable, Comparable<Shape<T>> {
    public static final int SIDES = 0, CORNERS[] = null;
    protected String name;
    private long id;

    protected Shape(String name) throws IOException {
        this.name = name;
    }

    public abstract double area();

    public final List<String> tags(T key, int... extras) {
        return emptyList();
    }

    public T[] items() {
        return null;
    }

    public <E extends Exception> void fail(E error) throws E {
    }

    Helper helper() {
        return null;
    }

    public static class Builder {
        public Shape<?> build() {
            return null;
        }
    }

    public interface Visitor {
        void visit(Shape<?> shape);

        int LIMIT = 3;

        default void done() {
        }

        class Impl {
        }
    }
}
`

func TestParseFile_PackageAndImports(t *testing.T) {
	unit, err := ParseFile("Shape.java", []byte(shapeSource))
	require.NoError(t, err)

	assert.Equal(t, "Shape.java", unit.Path)
	assert.Equal(t, "com.example.api", unit.Package)
	assert.Equal(t, []Import{
		{Path: "java.util.List"},
		{Path: "java.io", Wildcard: true},
		{Path: "java.util.Collections.emptyList", Static: true},
		{Path: "com.example.util.Helper"},
	}, unit.Imports)
}

func TestParseFile_TypeDeclarationAsWritten(t *testing.T) {
	unit, err := ParseFile("Shape.java", []byte(shapeSource))
	require.NoError(t, err)
	require.Len(t, unit.Types, 1)

	shape := unit.Types[0]
	assert.Equal(t, "Shape", shape.Name)
	assert.Equal(t, typegraph.KindClass, shape.Kind)
	assert.Equal(t, typegraph.VisibilityPublic, shape.Modifiers.Access)
	assert.True(t, shape.Modifiers.Abstract)
	assert.Equal(t, []TypeParam{{Name: "T", Bound: TypeRef{Name: "Comparable"}}}, shape.TypeParams)
	assert.True(t, shape.Superclass.IsZero())
	assert.Equal(t, []TypeRef{{Name: "Serializable"}, {Name: "Comparable"}}, shape.Interfaces)

	require.Len(t, shape.Fields, 4)
	assert.Equal(t, FieldDef{Name: "SIDES", Modifiers: Modifiers{Access: typegraph.VisibilityPublic, Static: true, Final: true}, Type: TypeRef{Name: "int"}}, shape.Fields[0])
	assert.Equal(t, TypeRef{Name: "int", Dims: 1}, shape.Fields[1].Type)
	assert.Equal(t, "name", shape.Fields[2].Name)
	assert.Equal(t, typegraph.VisibilityPrivate, shape.Fields[3].Modifiers.Access)

	require.Len(t, shape.Constructors, 1)
	assert.Equal(t, []TypeRef{{Name: "String"}}, shape.Constructors[0].Params)
	assert.Equal(t, []TypeRef{{Name: "IOException"}}, shape.Constructors[0].Throws)

	require.Len(t, shape.Methods, 5)
	area := shape.Methods[0]
	assert.Equal(t, "area", area.Name)
	assert.False(t, area.HasBody)
	assert.True(t, area.Modifiers.Abstract)

	tags := shape.Methods[1]
	assert.Equal(t, TypeRef{Name: "List"}, tags.Returns)
	assert.Equal(t, []TypeRef{{Name: "T"}, {Name: "int", Dims: 1}}, tags.Params)
	assert.True(t, tags.HasBody)

	assert.Equal(t, TypeRef{Name: "T", Dims: 1}, shape.Methods[2].Returns)

	fail := shape.Methods[3]
	assert.Equal(t, []TypeParam{{Name: "E", Bound: TypeRef{Name: "Exception"}}}, fail.TypeParams)
	assert.Equal(t, []TypeRef{{Name: "E"}}, fail.Throws)

	require.Len(t, shape.Nested, 2)
	assert.Equal(t, "Builder", shape.Nested[0].Name)
	visitor := shape.Nested[1]
	assert.Equal(t, typegraph.KindInterface, visitor.Kind)
	require.Len(t, visitor.Methods, 2)
	assert.True(t, visitor.Methods[1].Modifiers.Default)
	require.Len(t, visitor.Nested, 1)
	assert.Equal(t, "Impl", visitor.Nested[0].Name)
}

func TestParseFile_QualifiedAndGenericTypes(t *testing.T) {
	src := `package p;

public class Holder {
    public java.util.Map.Entry<String, java.util.List<Integer>> entry;
    public Outer.Inner<String>[][] grid;
}
`
	unit, err := ParseFile("Holder.java", []byte(src))
	require.NoError(t, err)
	require.Len(t, unit.Types, 1)

	fields := unit.Types[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, TypeRef{Name: "java.util.Map.Entry"}, fields[0].Type)
	assert.Equal(t, TypeRef{Name: "Outer.Inner", Dims: 2}, fields[1].Type)
}

func TestParseFile_SyntaxError(t *testing.T) {
	_, err := ParseFile("Broken.java", []byte("package p;\n\npublic class {\n"))

	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "Broken.java")
}

func TestParseFile_DefaultPackage(t *testing.T) {
	unit, err := ParseFile("A.java", []byte("class A {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "", unit.Package)
	require.Len(t, unit.Types, 1)
	assert.Equal(t, "", string(unit.Types[0].Modifiers.Access))
}
