// Package phase collects the draw items of a render pass per view and turns
// them into batches.
//
// Items are grouped by a BinKey (pipeline, draw function, mesh asset).
// BinnedPhase keeps one bin per key and draws each bin as one instanced
// batch; SortedPhase orders items by depth and batches runs of equal keys.
// A draw function is an explicit sequence of Commands executed against a
// render.MaskEncoder.
package phase
