// Package audio cuts chapter tracks out of a downloaded source file.
//
// PlanTracks turns a chapter sequence into numbered output files named by a
// template. Splitter runs one ffmpeg pass per track: cut, encode to MP3,
// write ID3v2.3 tags, and attach the cover image when one is available.
package audio
