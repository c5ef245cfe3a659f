package email

import (
	"fmt"

	"campustalk_backend/internal/config"
	"campustalk_backend/internal/repositories"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Sender delivers notification emails over SMTP. It satisfies the
// notification dispatcher's email channel and resolves recipient
// addresses from the user store.
type Sender struct {
	cfg      *config.Config
	db       *gorm.DB
	userRepo repositories.UserRepository
}

func NewSender(cfg *config.Config, db *gorm.DB, userRepo repositories.UserRepository) *Sender {
	return &Sender{cfg: cfg, db: db, userRepo: userRepo}
}

func (s *Sender) SendNotification(recipientID, subject, body string) error {
	user, err := s.userRepo.FindByID(s.db, recipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Email.FromEmail, s.cfg.Email.FromName))
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		s.cfg.Email.SMTPHost,
		s.cfg.Email.SMTPPort,
		s.cfg.Email.SMTPUsername,
		s.cfg.Email.SMTPPassword,
	)
	return d.DialAndSend(m)
}
