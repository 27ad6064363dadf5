package checkout

import "time"

// Clock schedules the delay between status polls. Tests inject a fake so
// the confirmation loop runs on virtual time.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
