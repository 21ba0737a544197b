package test

import (
	"errors"
	"io"
	mrand "math/rand"

	"github.com/tmpfs/synedrion/tss"
)

type envelope struct {
	from int
	to   int
	bz   []byte
}

// Intercept lets a test observe or tamper with a wire payload before
// delivery. Returning deliver=false drops the message.
type Intercept func(from, to int, bz []byte) (out []byte, deliver bool)

// RunSessions drives a set of sessions to completion over an in-memory
// transport. When shuffle is non-nil, pending deliveries are picked in
// random order, which exercises the out-of-order paths and the one-ahead
// cache. The optional intercept hook may drop or corrupt payloads.
func RunSessions(sessions []*tss.Session, rnd io.Reader, shuffle *mrand.Rand, intercept Intercept) ([]interface{}, *tss.Error) {
	queue := make([]envelope, 0, len(sessions)*len(sessions))

	push := func(from int, out *tss.Outgoing) {
		if out.IsBroadcast {
			for to := range sessions {
				if to == from {
					continue
				}
				queue = append(queue, envelope{from: from, to: to, bz: out.Broadcast})
			}
			return
		}
		for to, bz := range out.Direct {
			if bz == nil || to == from {
				continue
			}
			queue = append(queue, envelope{from: from, to: to, bz: bz})
		}
	}

	for i, s := range sessions {
		out, err := s.EmitMessages(rnd)
		if err != nil {
			return nil, err
		}
		push(i, out)
	}

	for {
		allFinished := true
		for _, s := range sessions {
			if !s.IsFinished() {
				allFinished = false
				break
			}
		}
		if allFinished {
			break
		}
		if len(queue) == 0 {
			// nothing in flight: the in-memory analog of a delivery timeout.
			// report whom the first stalled session is waiting for.
			for _, s := range sessions {
				if !s.IsFinished() && !s.IsFinishedReceiving() && len(s.WaitingFor()) > 0 {
					return nil, s.MissingError()
				}
			}
			return nil, tss.NewError(errors.New("the sessions stalled with no messages in flight"),
				tss.KindMyFault, "test", 0, nil)
		}

		idx := 0
		if shuffle != nil {
			idx = shuffle.Intn(len(queue))
		}
		env := queue[idx]
		queue = append(queue[:idx], queue[idx+1:]...)

		if intercept != nil {
			bz, deliver := intercept(env.from, env.to, env.bz)
			if !deliver {
				continue
			}
			env.bz = bz
		}

		s := sessions[env.to]
		if s.IsFinished() {
			continue
		}
		if err := s.Receive(env.from, env.bz); err != nil {
			return nil, err
		}
		for s.IsFinishedReceiving() {
			if err := s.FinalizeRound(rnd); err != nil {
				return nil, err
			}
			if s.IsFinished() {
				break
			}
			out, err := s.EmitMessages(rnd)
			if err != nil {
				return nil, err
			}
			push(env.to, out)
			if err := s.ApplyCached(); err != nil {
				return nil, err
			}
		}
	}

	results := make([]interface{}, len(sessions))
	for i, s := range sessions {
		res, err := s.Result()
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}
