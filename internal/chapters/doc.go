// Package chapters resolves and refines the track boundaries of a video.
//
// Resolution walks three fallback tiers in order: platform chapter metadata,
// timestamps parsed from the free-text description, and silence detected in
// the downloaded audio. The first tier that yields a sequence wins; when none
// does, the whole file becomes a single chapter. Every resolved sequence starts
// at 0 and is contiguous.
//
// Refinement snaps declared boundaries (metadata or description) to the
// nearest silence midpoint within a small window and reports the adjustments.
package chapters
