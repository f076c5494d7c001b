package morph

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertRect(t *testing.T, name string, got, want Rect) {
	t.Helper()
	assertNear(t, name+".X", got.X, want.X)
	assertNear(t, name+".Y", got.Y, want.Y)
	assertNear(t, name+".Width", got.Width, want.Width)
	assertNear(t, name+".Height", got.Height, want.Height)
}

// --- computeLocalTransform ---

func TestLocalTransformIdentity(t *testing.T) {
	n := NewContainer("test")
	assertMatrix(t, "local", computeLocalTransform(n), identityTransform)
}

func TestLocalTransformScaleTranslate(t *testing.T) {
	n := NewContainer("test")
	n.X, n.Y = 10, 20
	n.ScaleX, n.ScaleY = 2, 3
	assertMatrix(t, "local", computeLocalTransform(n), [6]float64{2, 0, 0, 3, 10, 20})
}

// --- affine helpers ---

func TestMultiplyAffineTranslations(t *testing.T) {
	a := [6]float64{1, 0, 0, 1, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 7}
	assertMatrix(t, "a*b", multiplyAffine(a, b), [6]float64{1, 0, 0, 1, 15, 27})
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 0, 0, 4, 10, 20}
	assertMatrix(t, "m*inv", multiplyAffine(m, invertAffine(m)), identityTransform)
}

func TestInvertAffineSingularReturnsIdentity(t *testing.T) {
	assertMatrix(t, "inv", invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityTransform)
}

// --- updateWorldTransform ---

func TestWorldTransformParentChild(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.X = 100
	child.X = 10

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.tx", parent.worldTransform[4], 100)
	assertNear(t, "child.tx", child.worldTransform[4], 110)
}

func TestAlphaPropagation(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.Alpha = 0.5
	child.Alpha = 0.5

	updateWorldTransform(parent, identityTransform, 1.0, false)

	assertNear(t, "parent.worldAlpha", parent.worldAlpha, 0.5)
	assertNear(t, "child.worldAlpha", child.worldAlpha, 0.25)
}

func TestDirtyFlagSkipsClean(t *testing.T) {
	n := NewContainer("n")
	updateWorldTransform(n, identityTransform, 1.0, false)

	// Writing X without marking dirty must not be picked up.
	n.X = 50
	updateWorldTransform(n, identityTransform, 1.0, false)
	assertNear(t, "tx", n.worldTransform[4], 0)

	n.SetAlpha(1)
	updateWorldTransform(n, identityTransform, 1.0, false)
	assertNear(t, "tx", n.worldTransform[4], 50)
}

func TestSettersDirty(t *testing.T) {
	n := NewContainer("n")
	updateWorldTransform(n, identityTransform, 1.0, false)

	n.SetPosition(1, 2)
	if !n.transformDirty {
		t.Error("SetPosition should mark dirty")
	}
	updateWorldTransform(n, identityTransform, 1.0, false)
	n.SetAlpha(0.5)
	if !n.transformDirty {
		t.Error("SetAlpha should mark dirty")
	}
}

func TestWorldToLocalRoundtrip(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.SetPosition(100, 50)
	child.SetPosition(10, 20)
	child.ScaleX, child.ScaleY = 2, 3

	updateWorldTransform(parent, identityTransform, 1.0, false)

	wx, wy := 150.0, 80.0
	lx, ly := child.WorldToLocal(wx, wy)
	wx2, wy2 := child.LocalToWorld(lx, ly)
	assertNear(t, "roundtrip.x", wx2, wx)
	assertNear(t, "roundtrip.y", wy2, wy)
}

// --- WorldBounds ---

func TestWorldBoundsRefreshesAncestors(t *testing.T) {
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddChild(child)
	parent.SetPosition(100, 50)
	child.SetPosition(10, 20)
	child.SetSize(30, 40)
	parent.ScaleX, parent.ScaleY = 2, 2

	assertRect(t, "bounds", child.WorldBounds(), Rect{X: 120, Y: 90, Width: 60, Height: 80})
}

func TestBoundsOverride(t *testing.T) {
	n := NewContainer("n")
	n.SetSize(10, 10)
	o := Rect{X: 5, Y: 6, Width: 70, Height: 80}

	n.SetBoundsOverride(o)
	assertRect(t, "override", n.WorldBounds(), o)

	n.ClearBoundsOverride()
	assertRect(t, "layout", n.WorldBounds(), Rect{Width: 10, Height: 10})
}

// --- Rect ---

func TestRectLerp(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 100, Y: 50, Width: 30, Height: 20}
	assertRect(t, "lerp0", a.Lerp(b, 0), a)
	assertRect(t, "lerp1", a.Lerp(b, 1), b)
	assertRect(t, "lerpHalf", a.Lerp(b, 0.5), Rect{X: 50, Y: 25, Width: 20, Height: 15})
}

func TestRectContainsAndCenter(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	if !r.Contains(10, 10) || !r.Contains(30, 20) {
		t.Error("edges should be inside")
	}
	if r.Contains(31, 15) {
		t.Error("point right of rect should be outside")
	}
	c := r.Center()
	assertNear(t, "center.X", c.X, 20)
	assertNear(t, "center.Y", c.Y, 15)
}
