// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package plan

// Payload pairs a plan step with the bytes it delivers. For literal
// steps Data is the step's slice of the new file; for reference steps
// Data is nil and the step's SourceID/SourceStart/Length coordinates
// are everything the consumer needs.
type Payload struct {
	Step Step
	Data []byte
}

// Payloads resolves each step of a plan against the new file's bytes,
// in plan order, so a downstream appender can apply them strictly in
// sequence. Literal payloads share target's backing array — the caller
// must not modify target until the payloads have been consumed.
//
// The plan must have been built for this target; Payloads panics on a
// literal step that reaches outside it.
func Payloads(target []byte, steps []Step) []Payload {
	payloads := make([]Payload, 0, len(steps))
	for _, s := range steps {
		p := Payload{Step: s}
		if s.IsLiteral() {
			p.Data = target[s.TargetStart : s.TargetStart+s.Length]
		}
		payloads = append(payloads, p)
	}
	return payloads
}
