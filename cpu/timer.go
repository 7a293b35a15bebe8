package cpu

const (
	TIMER_HZ = 60 // Rate at which the host is expected to call Tick.
)

// Timers are the delay and sound countdown counters.
type Timers struct {
	Delay uint8
	Sound uint8
}

// Tick decrements both timers, stopping at zero.
func (tm *Timers) Tick() {
	if tm.Delay > 0 {
		tm.Delay--
	}
	if tm.Sound > 0 {
		tm.Sound--
	}
}

// SoundActive is true while the sound timer is running.
func (tm *Timers) SoundActive() bool {
	return tm.Sound > 0
}

func (tm *Timers) Reset() {
	tm.Delay = 0
	tm.Sound = 0
}
