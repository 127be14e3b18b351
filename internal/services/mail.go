package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Manage My Parents <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			log.Printf("Failed to send mail to %v: %v", to, err)
		}
	}()
}

// SendInvitationEmail notifies the invitee that they were invited to a group.
func (s *MailService) SendInvitationEmail(to, inviterName, groupName string) {
	siteURL := os.Getenv("SITE_URL")
	body := fmt.Sprintf(
		`<p><strong>%s</strong> invited you to join the group <strong>%s</strong>.</p>
<p><a href="%s/invitations">Review your invitations</a> to accept or decline.</p>`,
		inviterName, groupName, siteURL)
	s.sendAsync([]string{to}, fmt.Sprintf("Invitation to join %s", groupName), body)
}

// SendReplyNotification tells a solution author someone replied to them.
func (s *MailService) SendReplyNotification(to, actorName, challengeTitle, replyText, link string) {
	body := fmt.Sprintf(
		`<p><strong>%s</strong> replied to your solution on <em>%s</em>:</p>
<blockquote>%s</blockquote>
<p><a href="%s">View the conversation</a></p>`,
		actorName, challengeTitle, replyText, link)
	s.sendAsync([]string{to}, "New reply to your solution", body)
}
