// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into an audio.Source using
// github.com/go-audio/aiff.
//
// Integer PCM of 8, 16, 24 and 32 bits is supported. Inputs that are not
// an io.ReadSeeker are buffered in memory first because the underlying
// decoder seeks between chunks.
package aiff
