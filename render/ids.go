// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// ViewID identifies a host view (camera) across frames.
type ViewID uint64

// EntityID identifies a host drawable across frames.
type EntityID uint64

// AssetID identifies a host asset (mesh or image).
type AssetID uint64
