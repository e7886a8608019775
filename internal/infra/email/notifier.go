package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPNotifier tells the user their edit job is permanently dead. Only
// called after retries are exhausted, so delivery failures are logged
// but never retried.
type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, userEmail, jobID, videoKey, errorMsg string) error {
	msg := n.buildMessage(userEmail, jobID, videoKey, errorMsg)

	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	if err := smtp.SendMail(addr, nil, n.from, []string{userEmail}, msg); err != nil {
		n.logger.Error("failure notification not delivered",
			zap.String("to", userEmail),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification sent",
		zap.String("to", userEmail),
		zap.String("job_id", jobID),
	)
	return nil
}

func (n *SMTPNotifier) buildMessage(userEmail, jobID, videoKey, errorMsg string) []byte {
	subject := fmt.Sprintf("Videoeditor - automatic edit failed (job %s)", jobID)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.from)
	fmt.Fprintf(&b, "To: %s\r\n", userEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("\r\n")
	b.WriteString("Hello,\r\n\r\n")
	b.WriteString("We could not finish the automatic edit of your video, even after retrying.\r\n\r\n")
	fmt.Fprintf(&b, "Job ID: %s\r\n", jobID)
	fmt.Fprintf(&b, "Video: %s\r\n", videoKey)
	fmt.Fprintf(&b, "Reason: %s\r\n\r\n", errorMsg)
	b.WriteString("You can upload the video again to start a new edit, or contact support with the job ID above.\r\n\r\n")
	b.WriteString("-- Videoeditor\r\n")

	return []byte(b.String())
}
