package mailer

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"go-apotek-pos/internal/model"

	"gopkg.in/gomail.v2"
)

// Mailer sends low-stock alert emails over SMTP. When SMTP is not configured
// every send is a silent no-op.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func FromEnv() *Mailer {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			port = parsed
		}
	}
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

func (m *Mailer) Configured() bool {
	return m.host != "" && m.from != ""
}

// SendLowStockAlert emails the admin a list of products that fell below their
// reorder threshold.
func (m *Mailer) SendLowStockAlert(to string, products []model.Product) error {
	if !m.Configured() || to == "" || len(products) == 0 {
		return nil
	}

	var rows strings.Builder
	for _, p := range products {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>", p.SKU, p.Name, p.Stock, p.MinStock)
	}

	body := fmt.Sprintf(`
		<html>
			<body>
				<h3>Low stock alert</h3>
				<table border="1" cellpadding="4">
					<tr><th>SKU</th><th>Product</th><th>Stock</th><th>Min</th></tr>
					%s
				</table>
				<p>This is an auto-generated email. Please do not reply.</p>
			</body>
		</html>
	`, rows.String())

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Low stock alert: %d product(s)", len(products)))
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}
