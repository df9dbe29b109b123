package java

import (
	"testing"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSources(t *testing.T, sources map[string]string) *typegraph.Graph {
	t.Helper()
	var units []*CompilationUnit
	for path, src := range sources {
		unit, err := ParseFile(path, []byte(src))
		require.NoError(t, err)
		units = append(units, unit)
	}
	g, err := Build("test", units)
	require.NoError(t, err)
	return g
}

func classOf(t *testing.T, g *typegraph.Graph, name string) *typegraph.Class {
	t.Helper()
	c, ok := g.Resolve(name)
	require.True(t, ok, "class %s not found", name)
	return c
}

func methodOf(t *testing.T, c *typegraph.Class, name string) *typegraph.Method {
	t.Helper()
	for _, m := range c.Methods() {
		if m.Name() == name {
			return m
		}
	}
	require.Failf(t, "method not found", "%s.%s", c.QualifiedName(), name)
	return nil
}

func fieldOf(t *testing.T, c *typegraph.Class, name string) *typegraph.Field {
	t.Helper()
	for _, f := range c.Fields() {
		if f.Name() == name {
			return f
		}
	}
	require.Failf(t, "field not found", "%s.%s", c.QualifiedName(), name)
	return nil
}

func ref(name string) typegraph.Type { return typegraph.NewType(name) }

func TestBuild_ResolvesTypeNames(t *testing.T) {
	g := buildSources(t, map[string]string{"com/example/api/Shape.java": shapeSource})
	shape := classOf(t, g, "com.example.api.Shape")

	assert.Equal(t, typegraph.VisibilityPublic, shape.Visibility())
	assert.True(t, shape.IsAbstract())
	assert.Equal(t, typegraph.ObjectTypeName, shape.Superclass())
	assert.Equal(t, []string{"java.io.Serializable", "java.lang.Comparable"}, shape.Interfaces())

	assert.Equal(t, ref("int"), fieldOf(t, shape, "SIDES").Type())
	assert.Equal(t, typegraph.ArrayOf(ref("int"), 1), fieldOf(t, shape, "CORNERS").Type())
	assert.Equal(t, ref("java.lang.String"), fieldOf(t, shape, "name").Type())

	ctors := shape.Constructors()
	require.Len(t, ctors, 1)
	assert.Equal(t, typegraph.VisibilityProtected, ctors[0].Visibility())
	assert.Equal(t, []typegraph.Type{ref("java.lang.String")}, ctors[0].Params())
	assert.Equal(t, []typegraph.Type{ref("java.io.IOException")}, ctors[0].Throws())

	tags := methodOf(t, shape, "tags")
	assert.True(t, tags.IsFinal())
	assert.Equal(t, ref("java.util.List"), tags.ReturnType())
	assert.Equal(t, []typegraph.Type{ref("java.lang.Comparable"), typegraph.ArrayOf(ref("int"), 1)}, tags.Params())

	assert.Equal(t, typegraph.ArrayOf(ref("java.lang.Comparable"), 1), methodOf(t, shape, "items").ReturnType())

	fail := methodOf(t, shape, "fail")
	assert.Equal(t, []typegraph.Type{ref("java.lang.Exception")}, fail.Params())
	assert.Equal(t, []typegraph.Type{ref("java.lang.Exception")}, fail.Throws())
	assert.True(t, fail.ReturnType().IsVoid())

	helper := methodOf(t, shape, "helper")
	assert.Equal(t, typegraph.VisibilityPackage, helper.Visibility())
	assert.Equal(t, ref("com.example.util.Helper"), helper.ReturnType())

	assert.Equal(t, ref("com.example.api.Shape"), methodOf(t, classOf(t, g, "com.example.api.Shape.Builder"), "build").ReturnType())
}

func TestBuild_NestedTypeModifiers(t *testing.T) {
	g := buildSources(t, map[string]string{"com/example/api/Shape.java": shapeSource})

	builder := classOf(t, g, "com.example.api.Shape.Builder")
	assert.True(t, builder.IsStatic())
	enclosing, ok := builder.EnclosingType()
	require.True(t, ok)
	assert.Equal(t, "com.example.api.Shape", enclosing.QualifiedName())
	require.Len(t, builder.Constructors(), 1)
	assert.Equal(t, typegraph.VisibilityPublic, builder.Constructors()[0].Visibility())

	visitor := classOf(t, g, "com.example.api.Shape.Visitor")
	assert.True(t, visitor.IsInterface())
	assert.True(t, visitor.IsStatic())
	assert.Empty(t, visitor.Constructors())

	visit := methodOf(t, visitor, "visit")
	assert.Equal(t, typegraph.VisibilityPublic, visit.Visibility())
	assert.True(t, visit.IsAbstract())
	assert.Equal(t, []typegraph.Type{ref("com.example.api.Shape")}, visit.Params())

	done := methodOf(t, visitor, "done")
	assert.Equal(t, typegraph.VisibilityPublic, done.Visibility())
	assert.False(t, done.IsAbstract())

	limit := fieldOf(t, visitor, "LIMIT")
	assert.Equal(t, typegraph.VisibilityPublic, limit.Visibility())
	assert.True(t, limit.IsStatic())
	assert.True(t, limit.IsFinal())

	impl := classOf(t, g, "com.example.api.Shape.Visitor.Impl")
	assert.Equal(t, typegraph.VisibilityPublic, impl.Visibility())
	assert.True(t, impl.IsStatic())
}

func TestBuild_Enum(t *testing.T) {
	g := buildSources(t, map[string]string{
		"com/example/api/Named.java": `package com.example.api;

public interface Named {
    String code();
}
`,
		"com/example/api/Color.java": `package com.example.api;

public enum Color implements Named {
    RED, GREEN("g");

    private final String code;

    Color() {
        this("r");
    }

    Color(String code) {
        this.code = code;
    }

    public String code() {
        return code;
    }
}
`,
	})

	color := classOf(t, g, "com.example.api.Color")
	assert.Equal(t, typegraph.KindEnum, color.Kind())
	assert.True(t, color.IsFinal())
	assert.Equal(t, "java.lang.Enum", color.Superclass())
	assert.Equal(t, []string{"com.example.api.Named"}, color.Interfaces())

	red := fieldOf(t, color, "RED")
	assert.Equal(t, typegraph.VisibilityPublic, red.Visibility())
	assert.True(t, red.IsStatic())
	assert.True(t, red.IsFinal())
	assert.Equal(t, ref("com.example.api.Color"), red.Type())
	assert.Equal(t, typegraph.VisibilityPrivate, fieldOf(t, color, "code").Visibility())

	require.Len(t, color.Constructors(), 2)
	for _, ctor := range color.Constructors() {
		assert.Equal(t, typegraph.VisibilityPrivate, ctor.Visibility())
	}

	values := methodOf(t, color, "values")
	assert.True(t, values.IsStatic())
	assert.Equal(t, typegraph.ArrayOf(ref("com.example.api.Color"), 1), values.ReturnType())
	assert.Equal(t, []typegraph.Type{ref("java.lang.String")}, methodOf(t, color, "valueOf").Params())

	assert.Equal(t, []string{"com.example.api.Named", "java.lang.Enum"}, g.Supertypes("com.example.api.Color"))
}

func TestBuild_Record(t *testing.T) {
	g := buildSources(t, map[string]string{"com/example/api/Point.java": `package com.example.api;

import java.util.List;

public record Point(int x, int y, List<String> labels) {
    public Point {
    }

    public int x() {
        return x;
    }

    public static Point origin() {
        return new Point(0, 0, List.of());
    }
}
`})

	point := classOf(t, g, "com.example.api.Point")
	assert.Equal(t, typegraph.KindRecord, point.Kind())
	assert.True(t, point.IsFinal())
	assert.Equal(t, "java.lang.Record", point.Superclass())

	ctors := point.Constructors()
	require.Len(t, ctors, 1)
	assert.Equal(t, typegraph.VisibilityPublic, ctors[0].Visibility())
	assert.Equal(t, []typegraph.Type{ref("int"), ref("int"), ref("java.util.List")}, ctors[0].Params())

	var names []string
	for _, m := range point.Methods() {
		names = append(names, m.Name())
	}
	assert.ElementsMatch(t, []string{"x", "origin", "y", "labels"}, names)
	assert.Equal(t, ref("java.util.List"), methodOf(t, point, "labels").ReturnType())
	assert.Equal(t, typegraph.VisibilityPrivate, fieldOf(t, point, "y").Visibility())
}

func TestBuild_AnnotationType(t *testing.T) {
	g := buildSources(t, map[string]string{"com/example/api/Marker.java": `package com.example.api;

public @interface Marker {
    String value() default "";

    int[] codes();
}
`})

	marker := classOf(t, g, "com.example.api.Marker")
	assert.True(t, marker.IsInterface())
	assert.Empty(t, marker.Constructors())

	value := methodOf(t, marker, "value")
	assert.Equal(t, typegraph.VisibilityPublic, value.Visibility())
	assert.True(t, value.IsAbstract())
	assert.Equal(t, ref("java.lang.String"), value.ReturnType())
	assert.Equal(t, typegraph.ArrayOf(ref("int"), 1), methodOf(t, marker, "codes").ReturnType())
}

func TestBuild_ImplicitDefaultConstructorFollowsClassVisibility(t *testing.T) {
	g := buildSources(t, map[string]string{"com/example/internal/Hidden.java": `package com.example.internal;

class Hidden {
    protected static class Inner {
    }
}
`})

	hidden := classOf(t, g, "com.example.internal.Hidden")
	assert.Equal(t, typegraph.VisibilityPackage, hidden.Visibility())
	require.Len(t, hidden.Constructors(), 1)
	assert.Equal(t, typegraph.VisibilityPackage, hidden.Constructors()[0].Visibility())

	inner := classOf(t, g, "com.example.internal.Hidden.Inner")
	assert.Equal(t, typegraph.VisibilityProtected, inner.Visibility())
	require.Len(t, inner.Constructors(), 1)
	assert.Equal(t, typegraph.VisibilityProtected, inner.Constructors()[0].Visibility())
}

func TestBuild_ResolutionOrder(t *testing.T) {
	g := buildSources(t, map[string]string{
		"a/Widget.java": `package a;

public class Widget {
}
`,
		"a/List.java": `package a;

public class List {
}
`,
		"b/Widget.java": `package b;

public class Widget {
}
`,
		"b/User.java": `package b;

import java.util.List;
import a.*;

public class User<T> {
    public List first;
    public Widget second;
    public T third;
    public Unknown fourth;
    public java.util.Map fifth;

    public static class Widget {
    }
}
`,
	})

	user := classOf(t, g, "b.User")
	assert.Equal(t, ref("java.util.List"), fieldOf(t, user, "first").Type(), "single-type import beats wildcard")
	assert.Equal(t, ref("b.User.Widget"), fieldOf(t, user, "second").Type(), "member type beats same package")
	assert.Equal(t, ref(typegraph.ObjectTypeName), fieldOf(t, user, "third").Type())
	assert.Equal(t, ref("Unknown"), fieldOf(t, user, "fourth").Type())
	assert.Equal(t, ref("java.util.Map"), fieldOf(t, user, "fifth").Type())
}

func TestBuild_DuplicateClassAcrossFiles(t *testing.T) {
	var units []*CompilationUnit
	for _, path := range []string{"one/A.java", "two/A.java"} {
		unit, err := ParseFile(path, []byte("package p;\npublic class A {}\n"))
		require.NoError(t, err)
		units = append(units, unit)
	}

	_, err := Build("dup", units)
	assert.ErrorIs(t, err, typegraph.ErrDuplicateClass)
}
