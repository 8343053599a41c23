// SPDX-License-Identifier: EPL-2.0

// Package audsim plays and renders audio through a simulated listening
// chain: calibration to a target sound pressure level, optional binaural
// room impulse response (BRIR) convolution, and an optional hearing-aid
// compression stage.
//
// # Quick Start
//
// A Session owns the path from a request to the sound card:
//
//	dev := malgodev.New(log)
//	p, _ := player.New(dev, player.Format{SampleRate: 48000, Channels: 2, FramesPerBuffer: 512})
//	s := audsim.NewSession(p)
//
//	err := s.Prepare(ctx, audsim.Request{
//	    Source:   "speech.wav",
//	    Mode:     simulation.Spatialization,
//	    LevelSPL: 65,
//	    BRIR:     "room.wav",
//	})
//	if err == nil {
//	    _ = s.Play()
//	    <-s.Done()
//	}
//
// Prepare reads every file concurrently, measures the source, and builds
// the per-channel chains. It fails as a whole: on error the player keeps
// whatever it had prepared before.
//
// # Offline Rendering
//
// Render runs the same chain without a device and writes the result,
// including the filter tails, to a WAV file:
//
//	frames, err := s.Render(ctx, req, "out.wav")
//
// # Source Loading
//
// LoadSource brings any audio.Source to the device rate and, when asked,
// to mono:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	r, _ := audsim.LoadSource(ctx, src, audsim.Options{TargetRate: 48000, Mono: true})
//
// # Packages
//
//   - dsp: processors, chains, groups and the FIR filter
//   - calibration: RMS based level calibration
//   - stream: the zero padded loader and the offline render loop
//   - simulation: BRIR loading and chain construction per mode
//   - hearingaid: prescriptions and the compressor stage
//   - player: the device state machine with malgo, oto and headless backends
//   - formats: WAV, MP3, Ogg Vorbis and AIFF decoders
package audsim
