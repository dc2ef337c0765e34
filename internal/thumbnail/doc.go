// Package thumbnail downloads a video's cover art for embedding in split
// tracks. It walks a quality ladder on the image host, then the thumbnail URL
// from the video metadata, retrying transient failures.
package thumbnail
