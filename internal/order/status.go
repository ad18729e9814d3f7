package order

import "strings"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

var transitions = map[Status][]Status{
	StatusProcessing: {StatusShipped, StatusCancelled, StatusFailed},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusCompleted},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
	StatusFailed:     nil,
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := transitions[s]
	return s, ok
}

// CanTransitionTo reports whether next is a legal successor of s. A status is
// never its own successor.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}
