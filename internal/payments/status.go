package payments

// Status values match what the provider reports: an order is created Pending
// and settles exactly once to SUCCESS or FAILED.
type Status string

const (
	StatusPending Status = "Pending"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending: {StatusSuccess: true, StatusFailed: true},
	StatusSuccess: {},
	StatusFailed:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}
