package notification

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"board-sync/internal/config"
	"board-sync/internal/features/email"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// RecipientSource yields the configured notification address, "" when unset.
type RecipientSource interface {
	NotificationEmail(ctx context.Context) (string, error)
}

// Dispatcher turns outbox inserts into mail. Delivery is at most once: a failed send is
// logged and recorded, never retried.
type Dispatcher struct {
	mailer     email.Mailer
	recipients RecipientSource
	outbox     OutboxRepository
	failures   email.FailureRepository
	loc        *time.Location
	log        *zap.Logger
	now        func() time.Time

	mailSource string
	chatSource string
}

func NewDispatcher(
	cfg *config.Config,
	mailer email.Mailer,
	recipients RecipientSource,
	outbox OutboxRepository,
	failures email.FailureRepository,
	log *zap.Logger,
) (*Dispatcher, error) {
	loc, err := time.LoadLocation(cfg.Notify.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEZONE %q: %w", cfg.Notify.Timezone, err)
	}
	return &Dispatcher{
		mailer:     mailer,
		recipients: recipients,
		outbox:     outbox,
		failures:   failures,
		loc:        loc,
		log:        log,
		now:        time.Now,
		mailSource: cfg.Notify.MailCollection,
		chatSource: cfg.Notify.ChatCollection,
	}, nil
}

func (d *Dispatcher) formatTime(t time.Time) string {
	if t.IsZero() {
		t = d.now()
	}
	return t.In(d.loc).Format(timeLayout)
}

// HandleAttendance sends one attendance mail and deletes the outbox document once the
// transport accepted it.
func (d *Dispatcher) HandleAttendance(ctx context.Context, doc AttendanceMail) error {
	to := strings.TrimSpace(doc.To)
	if to == "" {
		addr, err := d.recipients.NotificationEmail(ctx)
		if err != nil {
			return fmt.Errorf("lookup notification email: %w", err)
		}
		to = addr
	}
	if to == "" {
		d.log.Info("no notification email configured, skipping attendance mail", zap.Any("id", doc.ID))
		return nil
	}

	msg := email.Message{To: []string{to}, Subject: doc.Subject, HtmlBody: doc.Html}
	if msg.Subject == "" {
		msg.Subject = fmt.Sprintf("[Attendance] %s - %s", doc.StudentName, doc.Status)
	}
	if msg.HtmlBody == "" {
		body, err := render(attendanceBody, bodyData{
			Name:   doc.StudentName,
			Status: doc.Status,
			Time:   d.formatTime(doc.Timestamp.Time),
		})
		if err != nil {
			return fmt.Errorf("render attendance mail: %w", err)
		}
		msg.HtmlBody = body
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		d.recordFailure(ctx, d.mailSource, doc.ID, msg, err)
		return err
	}
	d.log.Info("attendance mail sent", zap.String("to", to), zap.Any("id", doc.ID))

	if err := d.outbox.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete outbox document: %w", err)
	}
	return nil
}

// HandleChat mails a new chat message to the configured address. The message stays.
func (d *Dispatcher) HandleChat(ctx context.Context, doc ChatMessage) error {
	to, err := d.recipients.NotificationEmail(ctx)
	if err != nil {
		return fmt.Errorf("lookup notification email: %w", err)
	}
	if to == "" {
		d.log.Info("no notification email configured, skipping chat mail", zap.Any("id", doc.ID))
		return nil
	}

	name := doc.Name
	if name == "" {
		name = "Anonymous"
	}
	body, err := render(chatBody, bodyData{
		Name:    name,
		Message: doc.Message,
		Time:    d.formatTime(doc.Timestamp.Time),
	})
	if err != nil {
		return fmt.Errorf("render chat mail: %w", err)
	}

	msg := email.Message{
		To:       []string{to},
		Subject:  fmt.Sprintf("[Chat] New message from %s", name),
		HtmlBody: body,
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.recordFailure(ctx, d.chatSource, doc.ID, msg, err)
		return err
	}
	d.log.Info("chat mail sent", zap.String("to", to), zap.Any("id", doc.ID))
	return nil
}

func (d *Dispatcher) recordFailure(ctx context.Context, source string, id interface{}, msg email.Message, sendErr error) {
	d.log.Error("failed to send notification mail",
		zap.String("source", source),
		zap.Any("id", id),
		zap.Strings("to", msg.To),
		zap.Error(sendErr),
	)
	if d.failures == nil {
		return
	}
	err := d.failures.Record(ctx, &email.Failure{
		Source:     source,
		DocumentID: id,
		To:         msg.To,
		Subject:    msg.Subject,
		ErrorMsg:   sendErr.Error(),
	})
	if err != nil {
		d.log.Warn("failed to record mail failure", zap.Error(err))
	}
}

// recordUndecodable dead-letters an outbox document that could not be read, so it is
// not dropped silently.
func (d *Dispatcher) recordUndecodable(ctx context.Context, source string, doc bson.Raw, decodeErr error) error {
	err := fmt.Errorf("decode %s document: %w", source, decodeErr)
	d.recordFailure(ctx, source, documentID(doc), email.Message{}, err)
	return err
}

func documentID(doc bson.Raw) interface{} {
	var id interface{}
	if v, err := doc.LookupErr("_id"); err == nil {
		_ = v.Unmarshal(&id)
	}
	return id
}
