package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/meetup-api/pkg/helpers"
	"github.com/oksasatya/meetup-api/pkg/mailer/templates"
)

// Sender delivers one rendered email. *Mailgun satisfies it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota
	Requeue         // transient failure, nack with requeue
	Drop            // undeliverable message, nack without requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	default:
		return "drop"
	}
}

// Processor turns queued EmailJob bodies into sent mail.
type Processor struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewProcessor(sender Sender, logger *logrus.Logger) *Processor {
	return &Processor{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle decodes body, renders its template if any, and sends it.
func (p *Processor) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		helpers.LogError(p.Logger, "bad message", err, nil)
		return Drop
	}
	if job.To == "" {
		helpers.LogError(p.Logger, "bad message", errors.New("missing recipient"), logrus.Fields{"template": job.Template})
		return Drop
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := templates.Render(job.Template, job.Data)
		if err != nil {
			helpers.LogError(p.Logger, "render failed", err, logrus.Fields{"template": job.Template})
			return Drop
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, p.SendTimeout)
	defer cancel()
	if err := p.Sender.Send(c, job.To, subject, text, html); err != nil {
		helpers.LogError(p.Logger, "send failed", err, logrus.Fields{"template": job.Template})
		return Requeue
	}
	helpers.LogInfo(p.Logger, "email sent", logrus.Fields{"template": job.Template})
	return Ack
}
