package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mail kinds, used as the "kind" metric label.
const (
	KindVerification  = "verification"
	KindPasswordReset = "password_reset"
)

var mailSendTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mail_send_total",
		Help: "Account emails dispatched, by kind and result",
	},
	[]string{"kind", "result"},
)

var templates = template.Must(template.New("mail").Parse(`
{{define "verification"}}<p>Welcome to {{.Company}}!</p>
<p>Please click the link below to verify your email address:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request this, you can safely ignore this email.</p>
{{end}}
{{define "password_reset"}}<p>A password reset was requested for your {{.Company}} account.</p>
<p>Use the link below to choose a new password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request this, you can safely ignore this email. Your password will not change.</p>
{{end}}`))

// NotifierConfig configures link targets and delivery limits.
type NotifierConfig struct {
	Company     string
	APIBaseURL  string // origin serving /api/auth/verify-email
	FrontendURL string // origin serving /reset-password
	Timeout     time.Duration
}

// Notifier sends account emails in the background. A failed send is logged and counted,
// never reported to the caller.
type Notifier struct {
	sender Sender
	cfg    NotifierConfig
	wg     sync.WaitGroup
}

// NewNotifier creates a Notifier delivering through sender.
func NewNotifier(sender Sender, cfg NotifierConfig) *Notifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Notifier{sender: sender, cfg: cfg}
}

// VerificationLink is the link mailed after registration.
func (n *Notifier) VerificationLink(code string) string {
	return n.cfg.APIBaseURL + "/api/auth/verify-email/" + url.PathEscape(code)
}

// ResetLink is the link mailed after a forgot-password request.
func (n *Notifier) ResetLink(code string) string {
	return n.cfg.FrontendURL + "/reset-password?code=" + url.QueryEscape(code)
}

// SendVerification dispatches the email-verification message.
func (n *Notifier) SendVerification(ctx context.Context, to, code string) {
	n.dispatch(ctx, KindVerification, to, "Verify Your Email", n.VerificationLink(code))
}

// SendPasswordReset dispatches the password-reset message.
func (n *Notifier) SendPasswordReset(ctx context.Context, to, code string) {
	n.dispatch(ctx, KindPasswordReset, to, "Reset Your Password", n.ResetLink(code))
}

// Wait blocks until in-flight sends finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) dispatch(ctx context.Context, kind, to, subject, link string) {
	body, err := n.render(kind, link)
	if err != nil {
		mailSendTotal.WithLabelValues(kind, "error").Inc()
		slog.Error("failed to render email", "kind", kind, "error", err)
		return
	}

	// the request context ends with the response; the send must outlive it
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.cfg.Timeout)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()

		if err := n.sender.Send(sendCtx, Message{To: to, Subject: subject, HTML: body}); err != nil {
			mailSendTotal.WithLabelValues(kind, "error").Inc()
			slog.Error("failed to send email", "kind", kind, "to", to, "error", err)
			return
		}
		mailSendTotal.WithLabelValues(kind, "ok").Inc()
	}()
}

func (n *Notifier) render(kind, link string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Company string
		Link    string
	}{n.cfg.Company, link}
	if err := templates.ExecuteTemplate(&buf, kind, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", kind, err)
	}
	return buf.String(), nil
}
