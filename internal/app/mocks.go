package app

import (
	"sync"

	"consultlink_backend/internal/email"
	"consultlink_backend/internal/logger"
)

// MockEmailProvider используется для тестов и локальной разработки без SMTP.
// Письма не уходят, а складываются в память и пишутся в лог.
type MockEmailProvider struct {
	mu   sync.Mutex
	sent []SentEmail
}

// SentEmail - письмо, "отправленное" через MockEmailProvider.
type SentEmail struct {
	To       []string
	Subject  string
	Template string
	Data     email.TemplateData
}

func (m *MockEmailProvider) Send(msg *email.Email) error {
	m.record(SentEmail{To: msg.To, Subject: msg.Subject})
	return nil
}

func (m *MockEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	m.record(SentEmail{To: to, Subject: subject, Template: templateName, Data: data})
	return nil
}

func (m *MockEmailProvider) Validate() error { return nil }

func (m *MockEmailProvider) record(e SentEmail) {
	m.mu.Lock()
	m.sent = append(m.sent, e)
	m.mu.Unlock()
	logger.Info("Mock email captured", "to", e.To, "subject", e.Subject, "template", e.Template)
}

// Sent возвращает копию всех перехваченных писем.
func (m *MockEmailProvider) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
