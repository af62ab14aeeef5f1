package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

const clientIDKey = "client_id"

// maxClientIDLen bounds identities taken from headers.
const maxClientIDLen = 128

// ClientIdentity resolves who is calling. When header is set, its value is
// trusted as the verified caller identity supplied by an upstream
// authenticator; otherwise the client network address is used.
type ClientIdentity struct {
	header string
}

// NewClientIdentity creates the middleware. An empty header always uses the
// network address.
func NewClientIdentity(header string) *ClientIdentity {
	return &ClientIdentity{header: header}
}

// Handle stores the caller identity in c.Locals.
func (m *ClientIdentity) Handle(c fiber.Ctx) error {
	id := ""
	if m.header != "" {
		id = sanitizeClientID(c.Get(m.header))
	}
	if id == "" {
		id = "ip:" + c.IP()
	}
	c.Locals(clientIDKey, id)
	return c.Next()
}

// ClientID returns the identity stored by ClientIdentity, falling back to the
// network address when the middleware did not run.
func ClientID(c fiber.Ctx) string {
	if id, ok := c.Locals(clientIDKey).(string); ok && id != "" {
		return id
	}
	return "ip:" + c.IP()
}

func sanitizeClientID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) > maxClientIDLen {
		id = id[:maxClientIDLen]
	}
	return id
}
