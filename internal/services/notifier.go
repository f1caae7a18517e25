package services

import "log"

// Notifier delivers confirmation codes out of band. Implementations must not
// block on the final delivery; signup treats the call as fire-and-forget.
type Notifier interface {
	SendConfirmationCode(email, username, code string) error
}

// LogNotifier writes confirmation codes to the process log. It stands in for
// the broker in local runs where RABBITMQ_URL is empty.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// SendConfirmationCode logs the code for the given recipient.
func (n *LogNotifier) SendConfirmationCode(email, username, code string) error {
	log.Printf("Confirmation code for %s <%s>: %s", username, email, code)
	return nil
}
