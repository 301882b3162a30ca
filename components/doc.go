// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package components provides reusable flow components, built only from
// port receives and sends.
//
// Each component exposes its ports as exported fields, owned by the
// component, and must be registered with the reactor before its ports are
// connected. Transforms drain their input on each dispatch. A failed send
// loses that value, ends the drain, and is reported as a fault; values still
// queued are kept for the next dispatch.
package components
