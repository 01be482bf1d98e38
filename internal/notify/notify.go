// internal/notify/notify.go

// Package notify sends submission receipts to uploaders and pings the
// observatory operators about new uploads.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"pfs-target-uploader/internal/common/aws"
	"pfs-target-uploader/internal/common/config"
	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/uploads"
)

// Notifier delivers receipts over SES and operator pings over SNS. Either
// channel can be disabled in config.
type Notifier struct {
	ses    *aws.SESClient
	sns    *aws.SNSClient
	cfg    config.NotificationConfig
	logger logger.Logger
}

// New builds a Notifier, creating only the clients the config enables.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	n := &Notifier{cfg: cfg, logger: log}

	if cfg.Email.Enabled {
		client, err := aws.NewSESClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		n.ses = client
	}
	if cfg.Operator.Enabled {
		client, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		n.sns = client
	}
	return n, nil
}

// SendReceipt emails the upload ID to the submitter.
func (n *Notifier) SendReceipt(ctx context.Context, to string, rec *uploads.Record) error {
	if n.ses == nil || to == "" {
		return nil
	}

	subject := fmt.Sprintf("PFS target uploader: submission %s received", rec.UploadID)
	body := fmt.Sprintf(
		"Your target list %q has been received.\n\n"+
			"Upload ID: %s\n"+
			"Targets: %d\n"+
			"Fiber hours: %.2f\n\n"+
			"Keep the upload ID for later reference.\n",
		rec.OriginalFilename, rec.UploadID, rec.NObj, rec.FiberHours,
	)

	if err := n.ses.SendText(ctx, n.cfg.Email.FromEmail, to, subject, body); err != nil {
		return apperrors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("receipt email sent", map[string]interface{}{
		"upload_id": rec.UploadID,
		"to":        to,
	})
	return nil
}

// NotifyOperator publishes the upload record to the operator topic.
func (n *Notifier) NotifyOperator(ctx context.Context, rec *uploads.Record) error {
	if n.sns == nil {
		return nil
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewNotificationSendFailedError("operator", err)
	}

	subject := fmt.Sprintf("New PFS target upload %s", rec.UploadID)
	if err := n.sns.Publish(ctx, n.cfg.Operator.TopicARN, subject, string(payload)); err != nil {
		return apperrors.NewNotificationSendFailedError("operator", err)
	}

	n.logger.Info("operator notified", map[string]interface{}{
		"upload_id": rec.UploadID,
	})
	return nil
}
