// Package pipeline orchestrates one run of ytcs: fetch metadata, download
// the audio through the format selector, resolve and refine chapters, split
// into tagged tracks, and record the result.
//
// Each stage runs through runStage, which tags the context and the logger
// with the stage name. Cover art, refinement, tag verification, and history
// are best effort: their failures are logged as warnings and the run goes on.
// Playlist URLs are expanded according to playlist.behavior and processed one
// entry at a time; a failed entry does not stop the rest.
package pipeline
