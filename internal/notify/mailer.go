package notify

import (
	"fmt"
	"net/smtp"

	"inventory-app/internal/domain/subscriptions"
	"inventory-app/internal/domain/users"
)

// Mailer sends the subscription lifecycle emails. Callers treat failures as
// fire-and-log: a lost email never blocks a state transition.
type Mailer struct {
	host     string
	port     string
	from     string
	password string
}

func NewMailer(host, port, from, password string) *Mailer {
	return &Mailer{host: host, port: port, from: from, password: password}
}

func (m *Mailer) SendConfirmation(user users.User, sub subscriptions.Subscription) error {
	return m.send(user.Email, "Subscription confirmed", confirmationBody(user, sub))
}

func (m *Mailer) SendExpirationReminder(user users.User, sub subscriptions.Subscription) error {
	return m.send(user.Email, "Your subscription expires soon", reminderBody(user, sub))
}

func confirmationBody(user users.User, sub subscriptions.Subscription) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour monthly subscription is now active until %s.\n\nAmount: %.2f %s\n",
		user.Name, endDateLabel(sub), sub.Amount, sub.Currency,
	)
}

func reminderBody(user users.User, sub subscriptions.Subscription) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour subscription expires on %s. Renew now to keep access to the application.\n",
		user.Name, endDateLabel(sub),
	)
}

// endDateLabel tolerates an undated row so an email can never panic a
// caller.
func endDateLabel(sub subscriptions.Subscription) string {
	if sub.EndDate == nil {
		return "the end of the current period"
	}
	return sub.EndDate.Format("2006-01-02")
}

func (m *Mailer) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, message)
}
