package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

const TemplatePaymentIncident = "payment_incident"

const paymentIncidentTemplate = `<h2>Payment needs manual follow-up</h2>
<p><b>Reason:</b> {{.reason}}</p>
<table>
<tr><td>Order ID</td><td>{{.order_id}}</td></tr>
<tr><td>Payment key</td><td>{{.payment_key}}</td></tr>
<tr><td>Callback amount</td><td>{{.callback_amount}}</td></tr>
<tr><td>Consultation amount</td><td>{{.expected_amount}}</td></tr>
<tr><td>User</td><td>{{.user_id}}</td></tr>
<tr><td>Occurred at</td><td>{{.occurred_at}}</td></tr>
</table>
{{if .error}}<pre>{{.error}}</pre>{{end}}`

// TemplateManager реализует TemplateRenderer для управления шаблонами email
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер со встроенными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	if err := tm.AddTemplate(TemplatePaymentIncident, paymentIncidentTemplate); err != nil {
		panic(err)
	}
	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}
