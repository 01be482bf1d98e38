// internal/notify/notify_test.go
package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfs-target-uploader/internal/common/config"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/uploads"
)

func TestNew_AllChannelsDisabled(t *testing.T) {
	var cfg config.NotificationConfig
	n, err := New(context.Background(), cfg, logger.NewNoOpLogger())
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Nil(t, n.ses)
	assert.Nil(t, n.sns)
}

func TestSendReceipt_NoOpWhenDisabled(t *testing.T) {
	n := &Notifier{logger: logger.NewNoOpLogger()}
	rec := &uploads.Record{UploadID: "0123456789abcdef"}

	assert.NoError(t, n.SendReceipt(context.Background(), "observer@example.org", rec))
	assert.NoError(t, n.NotifyOperator(context.Background(), rec))
}

func TestSendReceipt_NoOpWithoutRecipient(t *testing.T) {
	n := &Notifier{logger: logger.NewNoOpLogger()}
	rec := &uploads.Record{UploadID: "0123456789abcdef"}

	// no recipient means nothing to send even with email enabled
	assert.NoError(t, n.SendReceipt(context.Background(), "", rec))
}
