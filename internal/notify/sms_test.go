package notify

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSMSService_SendSMS(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := NewLogSMSService()
	s.Logger = logger

	msg := &SMS{To: "+91 9876543210", Body: "code 123456"}
	require.NoError(t, s.SendSMS(context.Background(), msg))

	assert.Equal(t, "log-1", msg.ID)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "+91 9876543210", hook.LastEntry().Data["to"])
	assert.Contains(t, hook.LastEntry().Message, "123456")

	second := &SMS{To: "+91 9000000000", Body: "code 654321"}
	require.NoError(t, s.SendSMS(context.Background(), second))
	assert.Equal(t, "log-2", second.ID)
}
