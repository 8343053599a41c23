// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files into an audio.Source using
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always yields 16-bit stereo, so every source from this package
// reports two channels regardless of the file's channel mode. Register it
// with an audio.Registry under "mp3":
//
//	reg := audio.NewRegistry()
//	reg.Register("mp3", mp3.Decoder{})
//
// Samples are normalised to [-1, 1). ReadSamples rejects destinations that
// are not a whole number of stereo frames with audio.ErrInvalidDstSize.
package mp3
