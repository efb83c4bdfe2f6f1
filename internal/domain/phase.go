package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownPhase = errors.New("unknown phase")

// Phase is a stage of the combined fair-launch and candy-machine lifecycle.
type Phase int

const (
	// PhaseAnticipation is the fair-launch phase 0, before bidding opens.
	PhaseAnticipation Phase = iota
	// PhaseSetPrice is fair-launch phase 1.
	PhaseSetPrice
	// PhaseGracePeriod is fair-launch phase 2.
	PhaseGracePeriod
	// PhaseLottery runs after phase 2 until the raffle is finalized on-chain.
	PhaseLottery
	// PhaseRaffleFinished is phase 3 with no candy machine yet.
	PhaseRaffleFinished
	// PhaseWaitForCM is phase 3 with a candy machine that is not live.
	PhaseWaitForCM
	// Phase4 is open minting on the candy machine.
	Phase4
	PhaseUnknown
)

var phaseNames = [...]string{
	PhaseAnticipation:   "AnticipationPhase",
	PhaseSetPrice:       "SetPrice",
	PhaseGracePeriod:    "GracePeriod",
	PhaseLottery:        "Lottery",
	PhaseRaffleFinished: "RaffleFinished",
	PhaseWaitForCM:      "WaitForCM",
	Phase4:              "Phase4",
	PhaseUnknown:        "Unknown",
}

// Phases lists every phase in lifecycle order.
func Phases() []Phase {
	return []Phase{
		PhaseAnticipation,
		PhaseSetPrice,
		PhaseGracePeriod,
		PhaseLottery,
		PhaseRaffleFinished,
		PhaseWaitForCM,
		Phase4,
		PhaseUnknown,
	}
}

func (p Phase) String() string {
	if p < PhaseAnticipation || p > PhaseUnknown {
		return phaseNames[PhaseUnknown]
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase returns the phase with the given name.
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return PhaseUnknown, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
}
