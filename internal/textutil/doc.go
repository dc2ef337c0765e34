// Package textutil provides text processing utilities for titles, folder
// names, and output file names.
//
// The primary use cases are:
//   - Cleaning chapter titles into track titles (CleanTrackTitle)
//   - Deriving artist and album names from a video title (ParseArtistAlbum)
//   - Sanitizing filenames and path segments for safe filesystem use
//   - Expanding the %n/%t/%a/%A output name templates
package textutil
