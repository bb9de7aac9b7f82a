package skills

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
)

var (
	callPattern    = regexp.MustCompile(`(?i)\b(?:call|phone|dial)\s+(\w+)`)
	messagePattern = regexp.MustCompile(`(?i)\b(?:message|text|whatsapp)\s+(\w+)(?:\s+(.+))?`)
	emailPattern   = regexp.MustCompile(`(?i)\b(?:send\s+)?(?:email|mail)\s+to\s+(.+?)(?:\s+about\s+(.+?))?(?:\s+saying\s+(.+))?$`)
)

const defaultMessageBody = "Hi!"

// resolveContact turns a lookup failure into a result listing the known names.
func (s *Skills) resolveContact(name string) (domain.Contact, *domain.Result) {
	contact, err := s.deps.Contacts.Find(name)
	if err == nil {
		return contact, nil
	}
	if errors.Is(err, domain.ErrContactNotFound) {
		res := domain.Failure(fmt.Sprintf("Contact '%s' not found. Available: %s", name, s.contactNames()))
		return domain.Contact{}, &res
	}
	res := domain.Failure(fmt.Sprintf("Could not look up '%s': %v", name, err))
	return domain.Contact{}, &res
}

func (s *Skills) contactNames() string {
	all := s.deps.Contacts.All()
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func (s *Skills) call(ctx context.Context, req registry.Request) (domain.Result, error) {
	m := callPattern.FindStringSubmatch(req.Text)
	if m == nil {
		return domain.Failure("Say: 'call amma'"), nil
	}
	contact, failed := s.resolveContact(m[1])
	if failed != nil {
		return *failed, nil
	}
	if contact.Phone == "" {
		return domain.Failure(fmt.Sprintf("%s has no phone number.", contact.Name)), nil
	}
	if err := s.deps.Executor.OpenURL(ctx, "tel:"+contact.Phone); err != nil {
		return domain.Failure(fmt.Sprintf("Could not call %s (%s): %v", contact.Name, contact.Phone, err)), nil
	}
	return domain.Success(fmt.Sprintf("Calling %s\n%s", contact.Name, contact.Phone)), nil
}

func (s *Skills) message(ctx context.Context, req registry.Request) (domain.Result, error) {
	m := messagePattern.FindStringSubmatch(req.Text)
	if m == nil {
		return domain.Failure("Say: 'message amma hello'"), nil
	}
	contact, failed := s.resolveContact(m[1])
	if failed != nil {
		return *failed, nil
	}
	body := strings.TrimSpace(m[2])
	if body == "" {
		body = defaultMessageBody
	}
	phone := strings.TrimPrefix(contact.Phone, "+")
	link := "https://wa.me/" + phone + "?" + url.Values{"text": {body}}.Encode()
	if err := s.deps.Executor.OpenURL(ctx, link); err != nil {
		return domain.Failure(fmt.Sprintf("Could not open WhatsApp for %s: %v", contact.Name, err)), nil
	}
	return domain.Success(fmt.Sprintf("WhatsApp: %s\n%s", contact.Name, body)), nil
}

func (s *Skills) email(ctx context.Context, req registry.Request) (domain.Result, error) {
	m := emailPattern.FindStringSubmatch(strings.TrimSpace(req.Text))
	if m == nil {
		return domain.Failure("Say: 'email to sinchana about leave saying I'm sick'"), nil
	}
	recipient := strings.TrimSpace(m[1])
	var address string
	if strings.Contains(recipient, "@") {
		address = recipient
		if req.Entities.HasEmail() {
			address = req.Entities.Email
		}
	} else {
		contact, failed := s.resolveContact(recipient)
		if failed != nil {
			return *failed, nil
		}
		address = contact.Email
	}
	if address == "" {
		return domain.Failure(fmt.Sprintf("%s has no email address.", recipient)), nil
	}

	subject, body := s.composeEmail(m[2], m[3])
	if s.deps.Mailer == nil || !s.deps.Mailer.Configured() {
		return domain.Warning(fmt.Sprintf("Email ready for %s\nConfigure the email section of config.yaml and set the SMTP password to send it.", address)), nil
	}
	if err := s.deps.Mailer.Send(ctx, address, subject, body); err != nil {
		return domain.Failure(fmt.Sprintf("Email to %s failed: %v", address, err)), nil
	}
	return domain.Success("Email sent to " + address), nil
}

// composeEmail builds a polite subject and body from the spoken fragments.
func (s *Skills) composeEmail(subject, body string) (string, string) {
	subject = capitalize(strings.TrimSpace(subject))
	if subject == "" {
		subject = "Request"
	}
	text := capitalize(strings.TrimSpace(body))
	if text == "" {
		text = "Please see subject line above for details."
	}
	sender := s.deps.Config.Email.SenderName
	if sender == "" {
		sender = "Aura"
	}
	var b strings.Builder
	b.WriteString("Dear Sir/Madam,\n\n")
	b.WriteString("I hope this email finds you well.\n\n")
	b.WriteString(text + "\n\n")
	b.WriteString("Thank you for your time and consideration.\n\n")
	b.WriteString("Best regards,\n")
	b.WriteString(sender + "\n")
	b.WriteString(s.now().Format(domain.DateFormat))
	return subject, b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
