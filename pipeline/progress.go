package pipeline

import (
	"sync/atomic"
	"time"
)

// Progress exposes counters of the current run to readers outside the loop
// (the status server). Only the runner writes to it.
type Progress struct {
	frames        atomic.Int64
	catFrames     atomic.Int64
	firstCatFrame atomic.Int64
	lastCat       atomic.Bool
	state         atomic.Int32
	startedAt     atomic.Int64
}

// ProgressSnapshot is a point-in-time copy of Progress.
type ProgressSnapshot struct {
	State         string `json:"state"`
	Frames        int64  `json:"frames"`
	CatFrames     int64  `json:"cat_frames"`
	FirstCatFrame int64  `json:"first_cat_frame"`
	CatPresent    bool   `json:"cat_present"`
	StartedAt     int64  `json:"started_at"`
}

func (p *Progress) start(now time.Time) {
	p.frames.Store(0)
	p.catFrames.Store(0)
	p.firstCatFrame.Store(0)
	p.lastCat.Store(false)
	p.startedAt.Store(now.Unix())
	p.setState(StateRunning)
}

func (p *Progress) record(catPresent bool) {
	n := p.frames.Add(1)
	p.lastCat.Store(catPresent)
	if catPresent {
		p.catFrames.Add(1)
		p.firstCatFrame.CompareAndSwap(0, n)
	}
}

func (p *Progress) setState(s State) {
	p.state.Store(int32(s))
}

func (p *Progress) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		State:         State(p.state.Load()).String(),
		Frames:        p.frames.Load(),
		CatFrames:     p.catFrames.Load(),
		FirstCatFrame: p.firstCatFrame.Load(),
		CatPresent:    p.lastCat.Load(),
		StartedAt:     p.startedAt.Load(),
	}
}
