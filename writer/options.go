// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package writer

import (
	"github.com/gogpu/metafile"
	"github.com/gogpu/metafile/internal/pool"
)

// Option configures a Writer.
//
// Example:
//
//	cfg, err := metafile.LoadConfigFile("metafile.toml")
//	if err != nil {
//	    return err
//	}
//	w := writer.New(writer.WithConfig(cfg))
type Option func(*options)

type options struct {
	packaging metafile.PackagingConfig
}

func defaultOptions() options {
	return options{packaging: metafile.DefaultConfig().Packaging}
}

// WithConfig applies the packaging section of cfg.
func WithConfig(cfg metafile.Config) Option {
	return WithPackaging(cfg.Packaging)
}

// WithPackaging sets the batching policy.
func WithPackaging(p metafile.PackagingConfig) Option {
	return func(o *options) {
		o.packaging = p
	}
}

// WithByteBudget caps the size of each recorded container. Zero means
// unlimited.
func WithByteBudget(n int64) Option {
	return func(o *options) {
		o.packaging.MaxContainerBytes = n
	}
}

func (o *options) geometryPool() *pool.GeometryPool {
	if o.packaging.RetainHighWater == metafile.DefaultConfig().Packaging.RetainHighWater {
		return pool.Default
	}
	return pool.NewGeometryPool(o.packaging.RetainHighWater)
}
