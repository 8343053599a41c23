// SPDX-License-Identifier: EPL-2.0

// Package audio moves samples between decoders, memory and the processing
// chain.
//
// Two shapes of audio appear here:
//   - Source streams interleaved float32 samples out of a decoder.
//   - Reader and Writer exchange deinterleaved frames, one []float32 per
//     channel, which is what the processing chain and the devices use.
//
// Samples are float32 in [-1, 1] throughout.
//
// # Sources
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// ReadSamples returns the number of float32 values written, not frames, and
// io.EOF once the stream is finished. Resampler and MonoMixer wrap a Source
// and are Sources themselves:
//
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 48000))
//
// The resampler uses cubic interpolation. When it downsamples, a one-pole
// low-pass with a cutoff just under the target Nyquist frequency runs first.
//
// # Frame Readers
//
// MemoryReader drains a Source once and then serves frames from memory, so
// a whole file can be measured for calibration and replayed from the start:
//
//	r, err := audio.NewMemoryReader(mono)
//	buffers := [][]float32{make([]float32, 512)}
//	for r.RemainingFrames() > 0 {
//	    n := r.Read(buffers)
//	    // buffers[0][:n] holds the next n frames
//	}
//	r.Reset()
//
// NewMemoryReaderFromChannels wraps samples that are already split by
// channel.
//
// # Writers
//
// A Writer takes the same per-channel buffers. WriterFactory is the
// constructor shape used for output files; formats/wav provides
// wav.NewFileWriter.
//
// # Opening Files
//
// Registry maps a format key or file extension to a Decoder. ReaderFactory
// opens a path through it:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	r, err := audio.ReaderFactory{Registry: reg}.Open("speech.wav")
//
// Failures to create a reader or writer are reported as *CreateError, which
// names the path and wraps the cause for errors.Is.
package audio
