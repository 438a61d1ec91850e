package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"craigslist-watcher/pkg/watcher"
)

// SendmailProvider delivers mail through a locally installed
// sendmail-compatible binary (commonly a wrapper for ssmtp, msmtp, or
// postfix). No SMTP credentials live in this process; the transport
// owns them.
type SendmailProvider struct {
	logger *slog.Logger
	to     string
	from   string
	debug  bool
}

// NewSendmailProvider creates a provider for the given recipient and
// sender addresses. An empty recipient is only an error once an alert
// is actually dispatched, so dry-run scans need no configuration.
func NewSendmailProvider(to, from string, debug bool, logger *slog.Logger) *SendmailProvider {
	if from == "" {
		from = "craigslist-watcher@localhost"
	}
	return &SendmailProvider{
		logger: logger,
		to:     strings.TrimSpace(to),
		from:   strings.TrimSpace(from),
		debug:  debug,
	}
}

// Send builds a plain-text message and pipes it to the transport on
// standard input. A non-zero exit status is a hard error for this
// alert.
func (p *SendmailProvider) Send(ctx context.Context, subject, body string) error {
	if p.to == "" {
		return fmt.Errorf("dispatch alert: %w", watcher.ErrNoRecipient)
	}

	bin, err := lookupTransport()
	if err != nil {
		return err
	}

	// Recipient as an argument is the most reliable form for ssmtp's
	// sendmail emulation; the headers below are still included.
	args := []string{}
	if p.debug {
		args = append(args, "-v")
	}
	// ssmtp ignores unknown flags unreliably, so -i only goes to a
	// real sendmail binary.
	if filepath.Base(bin) == "sendmail" {
		args = append(args, "-i")
	}
	args = append(args, p.to)

	msg := p.message(subject, body)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(msg)
	output, err := cmd.CombinedOutput()

	if p.debug {
		p.logger.Info("Mail transport invoked",
			"cmd", bin+" "+strings.Join(args, " "),
			"output", string(output),
			"error", err)
	}

	if err != nil {
		return fmt.Errorf("mail transport %s failed: %w (output: %s)", bin, err, strings.TrimSpace(string(output)))
	}

	p.logger.Info("Alert delivered", "to", p.to, "subject", subject, "transport", bin)
	return nil
}

func (p *SendmailProvider) message(subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", p.from)
	fmt.Fprintf(&b, "To: %s\n", p.to)
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	b.WriteString("\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

func lookupTransport() (string, error) {
	if bin, err := exec.LookPath("sendmail"); err == nil {
		return bin, nil
	}
	if bin, err := exec.LookPath("ssmtp"); err == nil {
		return bin, nil
	}
	return "", errors.New("couldn't find sendmail or ssmtp on PATH")
}
