package classifier

import (
	"time"

	"mintwatch/internal/domain"
)

const (
	StatusComplete = "COMPLETE"
	StatusLive     = "LIVE"
)

// Header is what the page shows for a phase. Date is the countdown target;
// Status replaces the countdown once Date is nil or elapsed.
type Header struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date,omitempty"`
	Status      string     `json:"status"`
}

// Display carries the collection naming used once minting is open.
type Display struct {
	CollectionName        string
	CollectionDescription string
}

// HeaderFor returns the header for p. The second result is false when
// nothing should be shown, which is the case for an unknown phase once a
// candy machine is known.
func HeaderFor(p domain.Phase, fl *domain.FairLaunchState, cm *domain.CandyMachineState, d Display) (Header, bool) {
	h := Header{Status: StatusComplete}

	switch p {
	case domain.PhaseAnticipation:
		h.Name, h.Description = "Phase 0", "Anticipation Phase"
		if fl != nil {
			h.Date = fl.PhaseOneStart
		}
	case domain.PhaseSetPrice:
		h.Name, h.Description = "Phase 1", "Set price phase"
		if fl != nil {
			h.Date = fl.PhaseOneEnd
		}
	case domain.PhaseGracePeriod:
		h.Name, h.Description = "Phase 2", "Grace period"
		if fl != nil {
			h.Date = fl.PhaseTwoEnd
		}
	case domain.PhaseLottery:
		h.Name, h.Description = "Phase 3", "Raffle in progress"
		h.Date = fl.LotteryEnd()
	case domain.PhaseRaffleFinished:
		h.Name, h.Description = "Phase 3", "Raffle finished!"
		if fl != nil {
			h.Date = fl.PhaseTwoEnd
		}
	case domain.PhaseWaitForCM:
		h.Name, h.Description = "Phase 3", "Minting starts in..."
		if cm != nil {
			h.Date = cm.GoLiveDate
		}
	case domain.Phase4:
		h.Name, h.Description = d.CollectionName, d.CollectionDescription
		h.Status = StatusLive
		if cm != nil {
			h.Date = cm.GoLiveDate
		}
	default:
		if cm != nil {
			return Header{}, false
		}
		h.Name, h.Description = "Loading...", "Please connect your wallet."
	}

	return h, true
}
