// PlayAtlas Core
// Copyright (c) 2026 The PlayAtlas Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of PlayAtlas Core.
//
// PlayAtlas Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// PlayAtlas Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with PlayAtlas Core.  If not, see <http://www.gnu.org/licenses/>.

package process

type options struct {
	procPath string
}

// Option configures an Inspector.
type Option func(*options)

// WithProcPath sets a custom /proc path (for testing). Ignored on
// platforms that do not use a proc filesystem.
func WithProcPath(path string) Option {
	return func(o *options) {
		o.procPath = path
	}
}

func applyOptions(opts []Option) *options {
	o := &options{procPath: "/proc"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
