// Package domain holds the call flow state machine. The flow is a pure value:
// a transition takes the current state and an operator event and returns the
// next state plus the effects to execute on commit. Nothing is written until
// a terminal state is reached, so an abandoned flow leaves no trace.
package domain

import "time"

// Outcome is the terminal category written on a call attempt.
type Outcome string

const (
	OutcomeNoAnswer    Outcome = "No_Answer"
	OutcomeInterested  Outcome = "Responded_Interested"
	OutcomeTepid       Outcome = "Responded_Tepid"
	OutcomeTransfer    Outcome = "Responded_Transfer"
	OutcomeCold        Outcome = "Responded_Cold"
	OutcomeWrongNumber Outcome = "Wrong_Number"
)

// ColdReasonOther marks a cold refusal that needs the operator's own wording.
const ColdReasonOther = "Other"

// ContactSnapshot is the person reached during a call, as captured by the
// operator. Every field is optional.
type ContactSnapshot struct {
	Name   string
	Role   string
	Email  string
	Mobile string
}

// State is the tagged union over the call flow. Exactly one variant per
// non-terminal step, plus Committed.
type State interface {
	isState()
}

// Idle is the flow before the operator dials.
type Idle struct{}

// Dialing is an in-progress call with no outcome yet.
type Dialing struct{}

// NoAnswer is the sub-step after an unanswered call; the operator still owes
// a callback before the outcome can commit.
type NoAnswer struct {
	MessageLeft bool
}

// Responded is the sub-step after the prospect picked up; the operator
// captures the contact and then chooses a terminal branch.
type Responded struct {
	Contact ContactSnapshot
}

// Committed is terminal. Effects carries everything the service must apply.
type Committed struct {
	Outcome Outcome
	Contact ContactSnapshot
	Effects []Effect
}

func (Idle) isState()      {}
func (Dialing) isState()   {}
func (NoAnswer) isState()  {}
func (Responded) isState() {}
func (Committed) isState() {}

// Event is an operator action driving the flow forward.
type Event interface {
	isEvent()
}

// Dial starts the call.
type Dial struct{}

// ReportNoAnswer records that nobody picked up.
type ReportNoAnswer struct {
	MessageLeft bool
}

// ReportResponded records that someone picked up.
type ReportResponded struct {
	Contact ContactSnapshot
}

// ScheduleFollowUp commits a NoAnswer outcome with its mandatory callback.
type ScheduleFollowUp struct {
	DueDate time.Time
	DueTime string
	Reason  string
	Notes   string
}

// ChooseInterested commits an Interested outcome.
type ChooseInterested struct {
	ProposedDate *time.Time
	Urgency      string
	Notes        string
	Offerings    []string
	Duration     time.Duration
}

// ChooseTepid commits a Tepid outcome with its follow-up callback.
type ChooseTepid struct {
	DueDate time.Time
	DueTime string
	Reason  string
	Notes   string
}

// ChooseTransfer commits a Transfer outcome.
type ChooseTransfer struct {
	Reason string
	Note   string
}

// ChooseCold commits a Cold outcome.
type ChooseCold struct {
	ReasonTag  string
	CustomText string
	Notes      string
}

// ChooseWrongNumber commits a WrongNumber outcome, optionally with a
// replacement number already normalized by the caller.
type ChooseWrongNumber struct {
	ReplacementPhone string
}

// Abandon drops the flow with no side effects.
type Abandon struct{}

func (Dial) isEvent()              {}
func (ReportNoAnswer) isEvent()    {}
func (ReportResponded) isEvent()   {}
func (ScheduleFollowUp) isEvent()  {}
func (ChooseInterested) isEvent()  {}
func (ChooseTepid) isEvent()       {}
func (ChooseTransfer) isEvent()    {}
func (ChooseCold) isEvent()        {}
func (ChooseWrongNumber) isEvent() {}
func (Abandon) isEvent()           {}
