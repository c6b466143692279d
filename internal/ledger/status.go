package ledger

// Status is the closed set of order lifecycle states. Delivered and
// Rejected are terminal.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusConfirmed  Status = "Confirmed"
	StatusInTransit  Status = "In Transit"
	StatusDelivered  Status = "Delivered"
	StatusRejected   Status = "Rejected"
)

var validNext = map[Status]map[Status]bool{
	StatusProcessing: {StatusConfirmed: true, StatusRejected: true},
	StatusConfirmed:  {StatusInTransit: true},
	StatusInTransit:  {StatusDelivered: true},
	StatusDelivered:  {},
	StatusRejected:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0
}
