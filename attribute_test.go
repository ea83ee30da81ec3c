// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metafile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttribute_String(t *testing.T) {
	assert.Equal(t, "LineSmooth", AttrLineSmooth.String())
	assert.Equal(t, "Unknown", Attribute(0).String())
	assert.Equal(t, "Unknown", Attribute(200).String())
	assert.True(t, AttrFillStipple.Valid())
	assert.False(t, attrEnd.Valid())
}

func TestSelectionFlags_Selectable(t *testing.T) {
	tests := []struct {
		name        string
		flags       SelectionFlags
		highlighted bool
		want        bool
	}{
		{"none", 0, false, true},
		{"disabled", SelectionDisabled, true, false},
		{"highlighted only, plain context", SelectHighlightedOnly, false, false},
		{"highlighted only, highlighted context", SelectHighlightedOnly, true, true},
		{"unhighlighted only, highlighted context", SelectUnhighlightedOnly, true, false},
		{"unhighlighted only, plain context", SelectUnhighlightedOnly, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flags.Selectable(tt.highlighted))
		})
	}
}

func TestLineweight_IsThin(t *testing.T) {
	assert.True(t, Pixels(1).IsThin())
	assert.True(t, Lineweight{}.IsThin())
	assert.False(t, Pixels(3).IsThin())
	assert.False(t, Lineweight{Kind: LineweightModel, Value: 0.5}.IsThin())
}

func TestAffine3(t *testing.T) {
	m := Translate3(1, 2, 3).Multiply(Scale3(2, 2, 2))
	assert.Equal(t, V3(3, 4, 5), m.Apply(V3(1, 1, 1)))
	assert.Equal(t, V3(2, 2, 2), m.ApplyVector(V3(1, 1, 1)))
	assert.Equal(t, m, Affine3FromFloats(m.Floats()))
}

func TestVec3(t *testing.T) {
	v := V3(3, 4, 0)
	assert.InDelta(t, 5, v.Length(), 1e-6)
	assert.InDelta(t, 1, v.Normalize().Length(), 1e-6)
	assert.Equal(t, V3(0, 0, 1), V3(1, 0, 0).Cross(V3(0, 1, 0)))
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#ff0000ff", Red.String())
	assert.Equal(t, Red, Red.Lerp(Blue, 0))
	assert.Equal(t, Blue, Red.Lerp(Blue, 1))
	mid := Black.Lerp(White, 0.5)
	assert.Equal(t, uint8(128), mid.R)
}
