package driver

import "time"

// PhaseStatus captures the state of one checking phase of one file.
type PhaseStatus uint8

const (
	PhaseWorking PhaseStatus = iota
	PhaseDone
	PhaseError
)

// PhaseObserver receives phase transitions while files are being checked.
// Implementations must be safe for concurrent use: CheckDir invokes the
// observer from worker goroutines.
type PhaseObserver interface {
	OnPhase(path, phase string, status PhaseStatus, err error, elapsed time.Duration)
}

func notifyPhase(obs PhaseObserver, path, phase string, status PhaseStatus, err error, elapsed time.Duration) {
	if obs != nil {
		obs.OnPhase(path, phase, status, err, elapsed)
	}
}
