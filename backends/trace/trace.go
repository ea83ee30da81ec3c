// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package trace provides a renderer and geometry visitor that record every
// call they receive. Traces are deterministic and compare well in snapshot
// tests; they can be dumped as YAML.
//
// The package registers itself as "trace":
//
//	import _ "github.com/gogpu/metafile/backends/trace"
//
//	r := player.MustRenderer("trace")
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/container"
	"github.com/gogpu/metafile/player"
)

func init() {
	player.Register("trace", func() player.Renderer {
		return New()
	})
}

// Call is one recorded call.
type Call struct {
	Op   string   `yaml:"op"`
	Args []string `yaml:"args,omitempty,flow"`
}

// String returns the call as "Op arg arg".
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op
	}
	return c.Op + " " + strings.Join(c.Args, " ")
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapabilities sets what the recorder reports to the player.
func WithCapabilities(caps player.Capabilities) Option {
	return func(r *Recorder) {
		r.caps = caps
	}
}

// WithHighlightedMarkers makes the recorder report the given markers as
// highlighted during marker-aware display playback.
func WithHighlightedMarkers(ids ...metafile.Marker) Option {
	return func(r *Recorder) {
		for _, id := range ids {
			r.highlightedMarkers[id] = true
		}
	}
}

// WithHighlightContext makes the recorder pick in a highlighted context.
func WithHighlightContext(on bool) Option {
	return func(r *Recorder) {
		r.highlightCtx = on
	}
}

// WithAbortAfter makes the recorder, as a geometry visitor, abort once it
// has recorded n primitives.
func WithAbortAfter(n int) Option {
	return func(r *Recorder) {
		r.abortAfter = n
	}
}

// Recorder records Renderer and GeometryVisitor calls.
// It is not safe for concurrent use.
type Recorder struct {
	calls              []Call
	caps               player.Capabilities
	highlightedMarkers map[metafile.Marker]bool
	highlightCtx       bool
	abortAfter         int
	primitives         int
}

var (
	_ player.Renderer          = (*Recorder)(nil)
	_ player.MarkerHighlighter = (*Recorder)(nil)
	_ player.GeometryVisitor   = (*Recorder)(nil)
	_ player.HighlightContext  = (*Recorder)(nil)
)

// New creates an empty Recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		caps:               player.Capabilities{Antialiasing: true},
		highlightedMarkers: make(map[metafile.Marker]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) add(op string, args ...string) {
	r.calls = append(r.calls, Call{Op: op, Args: args})
}

// Calls returns the recorded calls.
func (r *Recorder) Calls() []Call { return r.calls }

// Lines returns the recorded calls as strings.
func (r *Recorder) Lines() []string {
	lines := make([]string, len(r.calls))
	for i, c := range r.calls {
		lines[i] = c.String()
	}
	return lines
}

// Filter returns the calls whose Op is one of ops, as strings.
func (r *Recorder) Filter(ops ...string) []string {
	var out []string
	for _, c := range r.calls {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c.String())
				break
			}
		}
	}
	return out
}

// Reset drops the recorded calls.
func (r *Recorder) Reset() {
	r.calls = nil
	r.primitives = 0
}

// YAML returns the trace as a YAML document.
func (r *Recorder) YAML() ([]byte, error) {
	return yaml.Marshal(r.calls)
}

// WriteYAML writes the trace as YAML to w.
func (r *Recorder) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.calls); err != nil {
		return fmt.Errorf("trace: encode: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a trace written by WriteYAML.
func ReadYAML(rd io.Reader) ([]Call, error) {
	var calls []Call
	if err := yaml.NewDecoder(rd).Decode(&calls); err != nil {
		return nil, fmt.Errorf("trace: decode: %w", err)
	}
	return calls, nil
}

func topologyName(t gputypes.PrimitiveTopology) string {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return "points"
	case gputypes.PrimitiveTopologyLineList:
		return "lines"
	case gputypes.PrimitiveTopologyTriangleList:
		return "triangles"
	default:
		return fmt.Sprintf("topology(%d)", t)
	}
}

func vec(v metafile.Vec3) string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}

func vecs(pts []metafile.Vec3) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = vec(p)
	}
	return out
}

func resourceName(res container.Resource) string {
	if res == nil {
		return "-"
	}
	return res.Key().String()
}
