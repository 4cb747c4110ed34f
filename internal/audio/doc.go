// Package audio plays the sound attached to a notification when it appears.
// It uses the beep library to decode WAV, OGG and MP3 files and caches the
// decoded buffers per path.
package audio
