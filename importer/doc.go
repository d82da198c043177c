// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package importer reconciles external sheets with the store. Each procedure
// keys its rows by a stable natural key, applies them in one transaction and
// returns a Summary. Running an import twice leaves the store as one run
// does, and a dry run reports the same counts without committing.
package importer
