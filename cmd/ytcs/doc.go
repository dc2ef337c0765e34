// Command ytcs downloads the audio of a video and splits it into one tagged
// MP3 per chapter.
//
//	ytcs [flags] <url>
//	ytcs config init|show|set|reset|validate|path
//	ytcs deps
//	ytcs history list|clear
//	ytcs version
//
// Exit status is 0 on success, 2 for configuration or validation errors, 3
// when every download attempt failed, 4 when a required binary is missing,
// and 1 otherwise.
package main
