// Package mock provides function-field fakes of the service interfaces.
package mock

import (
	"context"

	"agri_advisor/internal/notify"
)

var _ notify.SMSService = &SMSService{}

type SMSService struct {
	SendSMSFn func(ctx context.Context, msg *notify.SMS) error
}

func (s *SMSService) SendSMS(ctx context.Context, msg *notify.SMS) error {
	return s.SendSMSFn(ctx, msg)
}
