// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the in-place signal processors that run inside the
// device callback.
//
// A Processor works on one channel; a ChannelProcessor works on all the
// channels of a cycle at once. Every processor reports its group delay in
// samples so a loader knows how much silence must be pushed through before
// the tail of the signal has been emitted:
//
//   - Chain runs processors one after the other on the same channel; its
//     delay is the sum of its members.
//   - Group runs processor i on channel i; its delay is the largest member
//     delay, or 0 when empty.
//   - Pipeline runs channel processors one after the other; its delay is the
//     sum of its members.
//
// Processors never allocate, lock or fail once constructed. Every buffer
// they need is sized in the constructor.
//
//	fir, err := dsp.NewFIRFilter(brirLeft)
//	if err != nil {
//	    return err
//	}
//	left := dsp.NewChain(dsp.NewScalar(gain), fir)
//	group := dsp.NewGroup(left, right)
//	group.Process(buffers)
package dsp
