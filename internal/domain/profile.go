package domain

import (
	"context"
	"encoding/json"
	"time"
)

const ContextProfileKey = "performanceProfile"

// Profile is a flat list of timed events for one request. Not thread safe;
// each request builds its own.
type Profile struct {
	StartTime time.Time      `json:"-"`
	Events    []ProfileEvent `json:"events"`
	TotalMs   int64          `json:"totalMs"`
}

type ProfileEvent struct {
	Name      string    `json:"name"`
	ElapsedMs int64     `json:"elapsedMs"`
	Time      time.Time `json:"time"`
}

func NewProfile() *Profile {
	return &Profile{
		StartTime: time.Now(),
	}
}

func GetProfile(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(ContextProfileKey).(*Profile)
	return p, ok
}

func (p *Profile) Add(name string) {
	last := p.StartTime
	if len(p.Events) > 0 {
		last = p.Events[len(p.Events)-1].Time
	}
	now := time.Now()
	p.Events = append(p.Events, ProfileEvent{
		Name:      name,
		ElapsedMs: now.Sub(last).Milliseconds(),
		Time:      now,
	})
}

func (p *Profile) End() {
	p.TotalMs = time.Since(p.StartTime).Milliseconds()
}

func (p Profile) ToJsonBytes() ([]byte, error) {
	return json.Marshal(p)
}
