// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package trace

import (
	"fmt"
	"strconv"

	"github.com/gogpu/metafile"
)

func (r *Recorder) Polyline(points []metafile.Vec3) {
	r.primitives++
	r.add("Polyline", vecs(points)...)
}

func (r *Recorder) Polygon(points []metafile.Vec3) {
	r.primitives++
	r.add("Polygon", vecs(points)...)
}

func (r *Recorder) SetMarker(id metafile.Marker) {
	r.add("SetMarker", fmt.Sprint(uint64(id)))
}

func (r *Recorder) MarkerRange(id metafile.Marker, first, count int) {
	r.add("MarkerRange", fmt.Sprint(uint64(id)), strconv.Itoa(first), strconv.Itoa(count))
}

func (r *Recorder) Aborted() bool {
	return r.abortAfter > 0 && r.primitives >= r.abortAfter
}

func (r *Recorder) Highlighted() bool { return r.highlightCtx }
