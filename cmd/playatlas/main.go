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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/PlayAtlas/playatlas-core/pkg/cli"
	"github.com/PlayAtlas/playatlas-core/pkg/config"
	"github.com/PlayAtlas/playatlas-core/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	var logWriters []io.Writer
	if *flags.Daemon {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(config.BaseDefaults, logWriters)
	flags.Post(cfg)

	if !*flags.Daemon {
		flag.Usage()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("service stopped with error")
		return err
	}

	log.Info().Msg("service stopped")
	return nil
}
