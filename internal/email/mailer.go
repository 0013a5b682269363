package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"publazer/internal/events"
	"publazer/internal/models"
	"publazer/internal/store"
)

// Mailer turns paper events into emails to the author. Delivery is best
// effort, so handlers never ask for redelivery.
type Mailer struct {
	sender Sender
	users  store.Users
	logger *slog.Logger
}

func NewMailer(sender Sender, users store.Users, logger *slog.Logger) *Mailer {
	return &Mailer{sender: sender, users: users, logger: logger}
}

// Register subscribes the mailer's handlers on router.
func (m *Mailer) Register(bus *events.Bus, router *message.Router) {
	bus.Handle(router, "mail-paper-submitted", events.TopicPaperSubmitted, m.HandleSubmitted)
	bus.Handle(router, "mail-paper-reviewed", events.TopicPaperReviewed, m.HandleReviewed)
}

func (m *Mailer) HandleSubmitted(msg *message.Message) error {
	ev, err := events.Decode[events.PaperSubmitted](msg)
	if err != nil {
		m.logger.Error("dropping malformed event", "error", err)
		return nil
	}

	subject := "Your paper was received"
	body := fmt.Sprintf(`
		<html>
			<body>
				<h2>Submission received</h2>
				<p>Your paper <strong>%s</strong> has been submitted and is waiting for review.</p>
			</body>
		</html>
	`, html.EscapeString(ev.Title))
	m.deliver(msg.Context(), ev.AuthorID, ev.PaperID, subject, body)
	return nil
}

func (m *Mailer) HandleReviewed(msg *message.Message) error {
	ev, err := events.Decode[events.PaperReviewed](msg)
	if err != nil {
		m.logger.Error("dropping malformed event", "error", err)
		return nil
	}

	subject, body := reviewMail(ev)
	m.deliver(msg.Context(), ev.AuthorID, ev.PaperID, subject, body)
	return nil
}

func (m *Mailer) deliver(ctx context.Context, authorID, paperID uuid.UUID, subject, body string) {
	author, err := m.users.GetByID(ctx, authorID)
	if err != nil {
		m.logger.WarnContext(ctx, "cannot mail author", "author_id", authorID, "paper_id", paperID, "error", err)
		return
	}
	if err := m.sender.Send(ctx, author.Email, subject, body); err != nil {
		m.logger.ErrorContext(ctx, "failed to send email", "author_id", authorID, "paper_id", paperID, "error", err)
	}
}

func reviewMail(ev events.PaperReviewed) (string, string) {
	title := html.EscapeString(ev.Title)

	subject := "New comment on your paper"
	headline := fmt.Sprintf("%s commented on <strong>%s</strong>.", html.EscapeString(ev.ReviewerName), title)
	if ev.StatusChanged {
		switch ev.Status {
		case models.StatusApproved:
			subject = "Your paper was approved"
			headline = fmt.Sprintf("Your paper <strong>%s</strong> has been approved.", title)
		case models.StatusRejected:
			subject = "Your paper was rejected"
			headline = fmt.Sprintf("Your paper <strong>%s</strong> has been rejected.", title)
		}
	}

	comment := ""
	if ev.Comment != "" {
		comment = fmt.Sprintf("<blockquote>%s</blockquote>", html.EscapeString(ev.Comment))
	}

	body := fmt.Sprintf(`
		<html>
			<body>
				<h2>%s</h2>
				<p>%s</p>
				%s
			</body>
		</html>
	`, subject, headline, comment)
	return subject, body
}
