// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files into an audio.Source using
// github.com/jfreymuth/oggvorbis.
//
// The decoder already produces float32 samples, so ReadSamples hands the
// destination slice straight to the library. Any channel count the stream
// declares is passed through.
package vorbis
