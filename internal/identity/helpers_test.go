package identity

import (
	"context"
	"strings"

	"github.com/homehelp/homehelp/internal/notification"
)

type capturingNotifier struct {
	messages []notification.Message
}

func (n *capturingNotifier) Send(_ context.Context, m notification.Message) error {
	n.messages = append(n.messages, m)
	return nil
}

// lastCode pulls the trailing code out of the most recent message body.
func (n *capturingNotifier) lastCode() string {
	if len(n.messages) == 0 {
		return ""
	}
	fields := strings.Fields(n.messages[len(n.messages)-1].Body)
	return fields[len(fields)-1]
}
