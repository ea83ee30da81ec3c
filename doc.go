// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package metafile records vector drawing operations into a compact binary
// command buffer and replays that buffer later, either against a live
// rasterization backend or against a geometry visitor used for picking.
//
// # Architecture
//
// The subsystem is split into four components, leaves first:
//
//   - container: the raw record stream plus two side tables, array blobs
//     (vertex, color, normal, texture coordinate and index buffers) and
//     reference-counted resources (materials, images)
//   - writer: an imperative drawing API that keeps the current attribute
//     state, batches compatible primitives and only emits state records
//     when a value actually changes
//   - player: a backend-agnostic interpreter with a display pass and a
//     geometry (pick) pass sharing one decode loop
//   - sharing: a cross-context registry that uploads a device resource once
//     per share group of contexts and destroys it with the last reference
//
// The wire format itself lives in package record. Two backends ship with
// the module: backends/raster rasterizes into an image and backends/trace
// records calls for tests. Both register with player.Register.
//
// # Basic Usage
//
//	w := writer.New()
//	if err := w.Begin(); err != nil {
//	    return err
//	}
//	w.SetColor(metafile.RGB(255, 0, 0))
//	w.Line(metafile.V3(0, 0, 0), metafile.V3(1, 0, 0))
//	w.Line(metafile.V3(1, 0, 0), metafile.V3(2, 0, 0))
//	c, err := w.End()
//	if err != nil {
//	    return err
//	}
//	defer c.Destroy()
//
//	r := raster.New(512, 512, raster.WithView(raster.Ortho(0, 0, 2, 2, 512, 512)))
//	err = player.New().Play(c, r, false, true)
//
// Containers persist with container.WriteTo and load back with
// container.ReadFrom, which re-resolves resources by key.
//
// # Thread Safety
//
// A Writer is not safe for concurrent use. A finished Container is immutable
// and may be played back from several goroutines at once, provided every
// goroutine owns its own Player and its own backend.
package metafile
