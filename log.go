// Copyright (c) 2026 skyrake
// SPDX-License-Identifier: MIT

package janes

import "github.com/rs/zerolog"

// logger reports content-level anomalies (bad spans and similar
// best-effort repairs). Structural errors are returned to the caller,
// never logged. Defaults to a no-op logger.
var logger = zerolog.Nop()

// SetLogger replaces the package logger. Call before starting decodes;
// the logger is shared read-only state across concurrent decode calls.
func SetLogger(l zerolog.Logger) {
	logger = l
}
