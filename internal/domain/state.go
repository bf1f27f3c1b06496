package domain

// SignalState is the evaluation state of a trade signal. OPEN is the only
// non-terminal state; every signal starts OPEN implicitly.
type SignalState string

const (
	StateOpen            SignalState = "OPEN"
	StateClosedTP        SignalState = "CLOSED_TP"
	StateClosedSL        SignalState = "CLOSED_SL"
	StateClosedPartialTP SignalState = "CLOSED_PARTIAL_TP"
	StateClosedTime      SignalState = "CLOSED_TIME"
)

// Terminal reports whether the state closes the signal for evaluation.
func (s SignalState) Terminal() bool {
	return s != StateOpen && s != ""
}
