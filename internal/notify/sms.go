// Package notify delivers one-time passcodes out of band.
package notify

import (
	"context"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// SMS represents a text message.
type SMS struct {
	ID   string
	To   string
	Body string
}

// SMSService sends a text message to a recipient.
type SMSService interface {
	SendSMS(ctx context.Context, msg *SMS) error
}

// Ensure service implements interface.
var _ SMSService = &LogSMSService{}

// LogSMSService "sends" messages by writing them to the log, where an
// operator can read the code. No gateway is contacted.
type LogSMSService struct {
	Logger logrus.FieldLogger

	mu  sync.Mutex
	seq int
}

// NewLogSMSService returns a LogSMSService writing to the standard logrus logger.
func NewLogSMSService() *LogSMSService {
	return &LogSMSService{Logger: logrus.StandardLogger()}
}

// SendSMS logs msg and assigns it a sequential ID.
func (s *LogSMSService) SendSMS(ctx context.Context, msg *SMS) error {
	s.mu.Lock()
	s.seq++
	msg.ID = "log-" + strconv.Itoa(s.seq)
	s.mu.Unlock()

	s.Logger.WithFields(logrus.Fields{
		"id": msg.ID,
		"to": msg.To,
	}).Info("sms: " + msg.Body)
	return nil
}
