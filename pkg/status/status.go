// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package status is savesync's user-facing surface: a transient status
// indicator, one-shot notifications, and an append-only console log of sync
// operations. Everything here is presentation; no sync decisions are made in
// this package.
package status

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 Reporter is the UI surface the sync engine and lifecycle controller
// talk to. Implementations must be safe for concurrent use: copy completions
// arrive from copy goroutines.
type Reporter interface {
	// Activated signals that save listening has been switched on
	Activated(ctx context.Context)
	// Deactivated signals that save listening has been switched off
	Deactivated(ctx context.Context)
	// Synced reports one completed copy of file to dest
	Synced(ctx context.Context, file, dest string)
	// SyncFailed reports one abandoned copy of file to dest
	SyncFailed(ctx context.Context, file, dest string, err error)
	// Info, Warn and Error are one-shot notifications
	Info(ctx context.Context, msg string)
	Warn(ctx context.Context, msg string)
	Error(ctx context.Context, msg string, err error)
}

// 🖥️ Console implements Reporter on a terminal
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	indicator *Indicator
}

// 🏭 NewConsole creates a console reporter writing to out
func NewConsole(out io.Writer) *Console {
	c := &Console{out: out}
	c.indicator = NewIndicator(func(text string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintln(out, formatIndicator(text))
	})
	return c
}

// Indicator exposes the transient status indicator, mostly for tests
func (c *Console) Indicator() *Indicator {
	return c.indicator
}

func (c *Console) Activated(ctx context.Context) {
	c.mu.Lock()
	fmt.Fprintln(c.out, formatBanner("watching for saves"))
	c.mu.Unlock()
	c.indicator.Idle()
	zerolog.Ctx(ctx).Info().Msg("savesync activated")
}

func (c *Console) Deactivated(ctx context.Context) {
	c.mu.Lock()
	fmt.Fprintln(c.out, formatBanner("stopped"))
	c.mu.Unlock()
	c.indicator.Idle()
	zerolog.Ctx(ctx).Info().Msg("savesync deactivated")
}

func (c *Console) Synced(ctx context.Context, file, dest string) {
	c.mu.Lock()
	fmt.Fprintln(c.out, formatSyncOperation(file, dest, nil))
	c.mu.Unlock()
	c.indicator.Flash(fmt.Sprintf("synced to %s", dest))
	zerolog.Ctx(ctx).Info().Str("file", file).Str("dest", dest).Msg("file synced")
}

func (c *Console) SyncFailed(ctx context.Context, file, dest string, err error) {
	c.mu.Lock()
	fmt.Fprintln(c.out, formatSyncOperation(file, dest, err))
	c.mu.Unlock()
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Printfln("sync of %s failed: %v", file, err)
	zerolog.Ctx(ctx).Error().Err(err).Str("file", file).Str("dest", dest).Msg("file sync failed")
}

func (c *Console) Info(ctx context.Context, msg string) {
	pterm.Info.Println(msg)
	zerolog.Ctx(ctx).Info().Msg(msg)
}

func (c *Console) Warn(ctx context.Context, msg string) {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
	zerolog.Ctx(ctx).Warn().Msg(msg)
}

func (c *Console) Error(ctx context.Context, msg string, err error) {
	pterm.Error.Println(msg)
	if err != nil {
		pterm.Error.Println(err)
	}
	zerolog.Ctx(ctx).Error().Err(err).Msg(msg)
}
