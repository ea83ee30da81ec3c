// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package player replays metafile containers.
//
// A Player walks the record stream front to back in one of two modes.
// Display playback drives a Renderer, removing redundant state changes,
// splitting draws at marker boundaries for per-sub-entity highlighting and
// emulating wide lines for renderers that only draw hairlines. Geometry
// playback feeds a GeometryVisitor for picking: rendering-only records are
// skipped and draws are decomposed into individual polylines and polygons.
//
// Replaying the same container twice produces the same call sequence.
// A Player holds per-pass state and is not reentrant; containers are
// read-only during playback, so separate Players may replay one container
// from several goroutines at once.
package player

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/internal/pool"
	"github.com/gogpu/metafile/record"
)

// Playback errors.
var (
	// ErrBusy is returned when a Player is used while a pass is running.
	ErrBusy = errors.New("player: playback in progress")

	// ErrCorrupt is returned when records are individually valid but
	// inconsistent: a draw without bound arrays, a range past the end of an
	// array, an unordered marker table.
	ErrCorrupt = errors.New("player: inconsistent stream")
)

// Phase is the state of a Player.
type Phase int32

const (
	Idle Phase = iota
	Streaming
	Applying
	Done
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Streaming:
		return "Streaming"
	case Applying:
		return "Applying"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("Phase(%d)", int32(p))
	}
}

// Option configures a Player.
type Option func(*options)

type options struct {
	playback metafile.PlaybackConfig
}

// WithConfig applies the playback section of cfg.
func WithConfig(cfg metafile.Config) Option {
	return WithPlayback(cfg.Playback)
}

// WithPlayback sets the playback tuning.
func WithPlayback(p metafile.PlaybackConfig) Option {
	return func(o *options) {
		o.playback = p
	}
}

// Player replays containers.
type Player struct {
	opts  options
	phase atomic.Int32
	dec   record.Decoder
	cache blobCache
	pool  *pool.GeometryPool
}

// New creates a Player.
func New(opts ...Option) *Player {
	o := options{playback: metafile.DefaultConfig().Playback}
	for _, opt := range opts {
		opt(&o)
	}
	return &Player{
		opts:  o,
		cache: newBlobCache(),
		pool:  pool.NewGeometryPool(o.playback.FallbackBufferVertices),
	}
}

// Phase returns the current phase.
func (p *Player) Phase() Phase { return Phase(p.phase.Load()) }

// Play replays c into r. highlighted starts the pass highlighted; with
// checkMarkers draws are split at the bound marker table so a
// MarkerHighlighter can highlight individual sub-entities.
func (p *Player) Play(c *container.Container, r Renderer, highlighted, checkMarkers bool) error {
	s := &displaySink{r: r, caps: r.Capabilities(), highlighted: highlighted, pool: p.pool,
		bufVerts: p.opts.playback.FallbackBufferVertices}
	if mh, ok := r.(MarkerHighlighter); ok {
		s.mh = mh
	}
	return p.run(c, s, checkMarkers)
}

// PlayForPick replays the geometry of c into v. With checkMarkers each
// marker range of a draw is reported through MarkerRange before its
// primitives.
func (p *Player) PlayForPick(c *container.Container, v GeometryVisitor, checkMarkers bool) error {
	s := &pickSink{v: v}
	if hc, ok := v.(HighlightContext); ok {
		s.highlighted = hc.Highlighted()
	}
	return p.run(c, s, checkMarkers)
}

// sink is one playback mode.
type sink interface {
	begin(c *container.Container)
	end()
	aborted() bool

	// apply handles every record that is not array or marker plumbing.
	apply(ps *pass, rec record.Record) error
	marker(id metafile.Marker)
	draw(ps *pass, d drawCall) error
	endSegments(ps *pass)
	text(ps *pass, run metafile.TextRun)
}

// drawCall is one marker range of a draw record.
type drawCall struct {
	topology gputypes.PrimitiveTopology
	indices  []uint32 // nil for array draws
	first    int      // element offset into the arrays or indices
	count    int
	rel      int // offset of the range within its draw record
	id       metafile.Marker
	split    bool
}

// pass is the per-pass stream state shared by both modes.
type pass struct {
	c            *container.Container
	cache        *blobCache
	checkMarkers bool

	arrays      Arrays
	arraysBound bool
	table       []container.MarkerEntry
	marker      metafile.Marker
	flags       metafile.SelectionFlags
}

func (p *Player) run(c *container.Container, s sink, checkMarkers bool) error {
	if !p.phase.CompareAndSwap(int32(Idle), int32(Streaming)) &&
		!p.phase.CompareAndSwap(int32(Done), int32(Streaming)) {
		return ErrBusy
	}
	defer p.phase.Store(int32(Done))

	p.cache.reset()
	ps := &pass{c: c, cache: &p.cache, checkMarkers: checkMarkers, marker: metafile.NoMarker}
	p.dec.Reset(c.Bytes())

	s.begin(c)
	defer s.end()

	for !s.aborted() {
		rec, err := p.dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			metafile.Logger().Warn("corrupt metafile stream", "id", c.ID(), "err", err)
			return fmt.Errorf("player: record %d: %w", p.dec.Count(), err)
		}

		p.phase.Store(int32(Applying))
		err = ps.step(s, rec)
		p.phase.Store(int32(Streaming))
		if err != nil {
			metafile.Logger().Warn("inconsistent metafile stream",
				"id", c.ID(), "offset", p.dec.Offset(), "err", err)
			return fmt.Errorf("player: record %d at offset %d: %w", p.dec.Count()-1, p.dec.Offset(), err)
		}
	}
	return nil
}

func (ps *pass) step(s sink, rec record.Record) error {
	switch r := rec.(type) {
	case record.BindArrays:
		return ps.bind(r)
	case record.BindMarkers:
		table, err := cached(ps.c, ps.cache.markers, r.Blob, container.DecodeMarkers)
		if err != nil {
			return err
		}
		ps.table = table
	case record.UnbindMarkers:
		ps.table = nil
	case record.SelectionMarker:
		if r.ID != ps.marker {
			ps.marker = r.ID
			s.marker(r.ID)
		}
	case record.SetSelectionFlags:
		ps.flags = r.Flags
	case record.DrawArrays:
		if !ps.arraysBound {
			return fmt.Errorf("%w: draw without bound arrays", ErrCorrupt)
		}
		if uint64(r.First)+uint64(r.Count) > uint64(len(ps.arrays.Vertices)) {
			return fmt.Errorf("%w: draw [%d,+%d) past %d vertices",
				ErrCorrupt, r.First, r.Count, len(ps.arrays.Vertices))
		}
		return ps.draw(s, r.Topology, nil, int(r.First), int(r.Count))
	case record.DrawIndexed:
		if !ps.arraysBound {
			return fmt.Errorf("%w: draw without bound arrays", ErrCorrupt)
		}
		indices, err := cached(ps.c, ps.cache.indices, r.Indices, container.DecodeIndices)
		if err != nil {
			return err
		}
		if uint64(r.First)+uint64(r.Count) > uint64(len(indices)) {
			return fmt.Errorf("%w: draw [%d,+%d) past %d indices", ErrCorrupt, r.First, r.Count, len(indices))
		}
		for _, i := range indices[r.First : r.First+r.Count] {
			if int(i) >= len(ps.arrays.Vertices) {
				return fmt.Errorf("%w: index %d past %d vertices", ErrCorrupt, i, len(ps.arrays.Vertices))
			}
		}
		return ps.draw(s, r.Topology, indices, int(r.First), int(r.Count))
	case record.Text:
		s.text(ps, r.Run)
		return nil
	}
	return s.apply(ps, rec)
}

func (ps *pass) bind(r record.BindArrays) error {
	var a Arrays
	var err error
	if a.Vertices, err = cached(ps.c, ps.cache.vec3, r.Vertices, container.DecodeVec3s); err != nil {
		return err
	}
	n := len(a.Vertices)
	if r.Colors != record.NoIndex {
		if a.Colors, err = cached(ps.c, ps.cache.colors, r.Colors, container.DecodeColors); err != nil {
			return err
		}
		if len(a.Colors) != n {
			return fmt.Errorf("%w: %d colors for %d vertices", ErrCorrupt, len(a.Colors), n)
		}
	}
	if r.Normals != record.NoIndex {
		if a.Normals, err = cached(ps.c, ps.cache.vec3, r.Normals, container.DecodeVec3s); err != nil {
			return err
		}
		if len(a.Normals) != n {
			return fmt.Errorf("%w: %d normals for %d vertices", ErrCorrupt, len(a.Normals), n)
		}
	}
	if r.TexCoords != record.NoIndex {
		if a.TexCoords, err = cached(ps.c, ps.cache.vec2, r.TexCoords, container.DecodeVec2s); err != nil {
			return err
		}
		if len(a.TexCoords) != n {
			return fmt.Errorf("%w: %d texcoords for %d vertices", ErrCorrupt, len(a.TexCoords), n)
		}
	}
	ps.arrays, ps.arraysBound = a, true
	return nil
}

// draw splits a draw record at the bound marker table when marker checks
// are on, and hands each range to the sink.
func (ps *pass) draw(s sink, topology gputypes.PrimitiveTopology, indices []uint32, first, count int) error {
	if count == 0 {
		return nil
	}
	if !ps.checkMarkers || len(ps.table) == 0 {
		return s.draw(ps, drawCall{topology: topology, indices: indices, first: first, count: count, id: ps.marker})
	}

	prev := -1
	for i, e := range ps.table {
		start := int(e.Offset)
		if start <= prev || start > count {
			return fmt.Errorf("%w: marker table entry %d at %d", ErrCorrupt, i, start)
		}
		prev = start
		end := count
		if i+1 < len(ps.table) {
			end = int(ps.table[i+1].Offset)
		}
		if i == 0 && start > 0 {
			// leading elements keep the current marker
			if err := ps.split(s, topology, indices, first, 0, start, ps.marker); err != nil {
				return err
			}
		}
		if end > count {
			end = count
		}
		if end <= start {
			continue
		}
		if err := ps.split(s, topology, indices, first, start, end-start, e.ID); err != nil {
			return err
		}
	}
	s.endSegments(ps)
	return nil
}

func (ps *pass) split(s sink, topology gputypes.PrimitiveTopology, indices []uint32,
	first, rel, count int, id metafile.Marker) error {
	return s.draw(ps, drawCall{
		topology: topology,
		indices:  indices,
		first:    first + rel,
		count:    count,
		rel:      rel,
		id:       id,
		split:    true,
	})
}
