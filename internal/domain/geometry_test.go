package domain_test

import (
	"math"
	"testing"

	"blocksgraph/internal/domain"
)

func TestGeometry_Validate(t *testing.T) {
	valid := domain.Geometry{X: 0, Y: 0, Width: 100, Height: 50}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid geometry, got %v", err)
	}

	cases := []struct {
		name string
		g    domain.Geometry
	}{
		{"zero width", domain.Geometry{Width: 0, Height: 50}},
		{"zero height", domain.Geometry{Width: 100, Height: 0}},
		{"negative width", domain.Geometry{Width: -10, Height: 50}},
		{"NaN x", domain.Geometry{X: math.NaN(), Width: 100, Height: 50}},
		{"infinite y", domain.Geometry{Y: math.Inf(1), Width: 100, Height: 50}},
	}
	for _, tc := range cases {
		err := tc.g.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !domain.IsValidation(err) {
			t.Errorf("%s: expected validation code, got %v", tc.name, domain.ErrCode(err))
		}
	}
}

func TestGeometry_Contains(t *testing.T) {
	g := domain.Geometry{X: 10, Y: 20, Width: 100, Height: 50}

	if !g.Contains(10, 20) {
		t.Error("top-left corner should be inside")
	}
	if !g.Contains(110, 70) {
		t.Error("bottom-right corner should be inside")
	}
	if g.Contains(9, 20) {
		t.Error("point left of the box should be outside")
	}
	if g.Contains(50, 71) {
		t.Error("point below the box should be outside")
	}
}

func TestGeometry_Intersects(t *testing.T) {
	a := domain.Geometry{X: 0, Y: 0, Width: 100, Height: 100}

	if !a.Intersects(domain.Geometry{X: 50, Y: 50, Width: 100, Height: 100}) {
		t.Error("overlapping boxes should intersect")
	}
	if a.Intersects(domain.Geometry{X: 100, Y: 0, Width: 100, Height: 100}) {
		t.Error("touching edges should not count as intersection")
	}
	if a.Intersects(domain.Geometry{X: 200, Y: 200, Width: 10, Height: 10}) {
		t.Error("disjoint boxes should not intersect")
	}
}

func TestGeometry_Normalized(t *testing.T) {
	g := domain.Geometry{X: 100, Y: 100, Width: -40, Height: -30}.Normalized()
	want := domain.Geometry{X: 60, Y: 70, Width: 40, Height: 30}
	if g != want {
		t.Errorf("got %+v, want %+v", g, want)
	}
}

func TestErrorCodes(t *testing.T) {
	ve := domain.NewError(domain.ErrCodeInvalidConnection, "self-loop disallowed")
	if !domain.IsValidation(ve) {
		t.Error("invalid connection should be a validation error")
	}
	if domain.IsNotFound(ve) {
		t.Error("validation error should not be a not-found error")
	}

	nf := domain.NewError(domain.ErrCodeBlockNotFound, "block %s", "b1")
	if !domain.IsNotFound(nf) {
		t.Error("block not found should be a not-found error")
	}
}
