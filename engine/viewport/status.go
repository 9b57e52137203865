package viewport

import (
	"fmt"
)

// StatusKind is the phase of the viewport's asset pipeline.
type StatusKind int

const (
	// StatusIdle means no asset has been requested.
	StatusIdle StatusKind = iota

	// StatusLoading means an asset is being fetched or decoded.
	StatusLoading

	// StatusReady means the requested asset is attached and visible.
	StatusReady

	// StatusFailed means the last request failed. A previously attached model stays visible.
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(k))
	}
}

// Status is the value published to subscribers.
type Status struct {
	Kind StatusKind

	// Progress is the loaded fraction in [0, 1]. Only meaningful when HasProgress is set;
	// a loading status without progress should be shown as indeterminate.
	Progress    float64
	HasProgress bool

	// Err is the failure, set only for StatusFailed. Usually a *loader.LoadError.
	Err error
}

// Idle returns the idle status.
func Idle() Status { return Status{Kind: StatusIdle} }

// Loading returns a loading status with a known fraction.
func Loading(progress float64) Status {
	return Status{Kind: StatusLoading, Progress: progress, HasProgress: true}
}

// LoadingIndeterminate returns a loading status whose total size is unknown.
func LoadingIndeterminate() Status { return Status{Kind: StatusLoading} }

// Ready returns the ready status.
func Ready() Status { return Status{Kind: StatusReady} }

// Failed returns a failed status carrying err.
func Failed(err error) Status { return Status{Kind: StatusFailed, Err: err} }

func (s Status) String() string {
	switch {
	case s.Kind == StatusLoading && s.HasProgress:
		return fmt.Sprintf("loading(%.2f)", s.Progress)
	case s.Kind == StatusFailed && s.Err != nil:
		return fmt.Sprintf("failed(%v)", s.Err)
	default:
		return s.Kind.String()
	}
}
