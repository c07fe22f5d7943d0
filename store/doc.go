// Package store maintains the latest normalized dataset in memory and hands
// out consistent snapshots to the serving layer. Only the refresh pipeline
// writes; commits are atomic map swaps and optionally mirrored to a
// write-behind snapshot sink (file or redis).
package store
