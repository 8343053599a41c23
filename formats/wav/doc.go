// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts 8, 16, 24 and 32-bit integer PCM with any channel count
// and sample rate, and returns an audio.Source producing float32 samples in
// [-1, 1]:
//
//	file, _ := os.Open("speech.wav")
//	src, err := wav.Decoder{}.Decode(file)
//
// # Encoding
//
// Writer takes one float buffer per channel, interleaves it and encodes it.
// NewFileWriter matches audio.WriterFactory and is what the offline renderer
// uses:
//
//	w, err := wav.NewFileWriter("out.wav", 2, 48000)
//	err = w.Write([][]float32{left, right})
//	err = w.Close()
//
// Close must be called; it patches the RIFF and data chunk sizes.
package wav
