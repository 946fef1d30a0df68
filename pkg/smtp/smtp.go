// Package smtp sends plain-text notification mail. The upstream relay
// does not offer TLS, so the LOGIN auth exchange is implemented by
// hand to skip the TLS requirement of smtp.PlainAuth.
package smtp

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/softdesk-lab/softdesk/pkg/config"
)

type loginAuth struct {
	username, password string
}

func LoginAuth(username, password string) smtp.Auth {
	return &loginAuth{username, password}
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (proto string, toServe []byte, err error) {
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	command := string(fromServer)
	command = strings.TrimSpace(command)
	command = strings.TrimSuffix(command, ":")
	command = strings.ToLower(command)

	if more {
		switch command {
		case "username":
			return []byte(a.username), nil
		case "password":
			return []byte(a.password), nil
		default:
			return nil, fmt.Errorf("unexpected server challenge: %s", command)
		}
	}
	return nil, nil
}

// Enabled reports whether an SMTP relay is configured at all.
func Enabled() bool {
	return config.GetConfig().SMTP.Host != ""
}

// SendEmail delivers a plain-text mail through the configured relay.
func SendEmail(receiver, subject, body string) error {
	smtpConfig := config.GetConfig().SMTP
	addr := smtpConfig.Host + ":" + smtpConfig.Port
	from := smtpConfig.Sender
	to := []string{receiver}

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body)

	auth := LoginAuth(smtpConfig.User, smtpConfig.Pass)
	return smtp.SendMail(addr, auth, from, to, msg)
}
