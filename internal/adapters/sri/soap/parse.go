package soap

import (
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/yamgooo/sri-client-go/internal/core/document"
)

// receptionReply is the classified answer of the reception service.
type receptionReply struct {
	status   string
	messages []document.Message
}

// parseReceptionReply locates the estado element and collects every mensaje
// entry. Element lookup is by local name; the SRI is inconsistent about
// namespace prefixes across environments.
func parseReceptionReply(body string) (receptionReply, error) {
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return receptionReply{}, err
	}

	reply := receptionReply{}
	if node := xmlquery.FindOne(doc, "//*[local-name()='estado']"); node != nil {
		reply.status = strings.TrimSpace(node.InnerText())
	}
	reply.messages = parseMessages(doc)

	return reply, nil
}

// authorizationReply is the classified answer of the authorization service.
type authorizationReply struct {
	containerFound      bool
	entryCount          int
	status              string
	authorizationNumber string
	authorizationDate   *time.Time
	environment         string
	documentContent     string
	messages            []document.Message
}

// parseAuthorizationReply locates the RespuestaAutorizacionComprobante
// container and its autorizacion entries, reading the first entry's fields.
// The authorization timestamp is parsed best-effort; an unparseable value is
// simply absent.
func parseAuthorizationReply(body string) (authorizationReply, error) {
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return authorizationReply{}, err
	}

	reply := authorizationReply{}

	container := xmlquery.FindOne(doc, "//*[local-name()='RespuestaAutorizacionComprobante']")
	if container == nil {
		return reply, nil
	}
	reply.containerFound = true

	entries := xmlquery.Find(container, "//*[local-name()='autorizacion']")
	reply.entryCount = len(entries)
	if len(entries) == 0 {
		return reply, nil
	}

	first := entries[0]
	reply.status = childText(first, "estado")
	reply.authorizationNumber = childText(first, "numeroAutorizacion")
	reply.environment = childText(first, "ambiente")
	reply.documentContent = childText(first, "comprobante")
	reply.authorizationDate = parseAuthorizationDate(childText(first, "fechaAutorizacion"))
	reply.messages = parseMessages(first)

	return reply, nil
}

// parseMessages collects mensaje entries (the ones carrying an identifier
// child, to skip the mensaje text fields nested inside entries).
func parseMessages(root *xmlquery.Node) []document.Message {
	nodes := xmlquery.Find(root, "//*[local-name()='mensaje'][*[local-name()='identificador']]")
	if len(nodes) == 0 {
		return nil
	}

	messages := make([]document.Message, 0, len(nodes))
	for _, node := range nodes {
		messages = append(messages, document.Message{
			Identifier:     childText(node, "identificador"),
			Text:           childText(node, "mensaje"),
			AdditionalInfo: childText(node, "informacionAdicional"),
			Severity:       parseSeverity(childText(node, "tipo")),
		})
	}
	return messages
}

func childText(node *xmlquery.Node, localName string) string {
	child := xmlquery.FindOne(node, "*[local-name()='"+localName+"']")
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.InnerText())
}

func parseSeverity(tipo string) document.Severity {
	switch strings.ToUpper(strings.TrimSpace(tipo)) {
	case "ERROR":
		return document.SeverityError
	case "ADVERTENCIA", "WARNING":
		return document.SeverityWarning
	default:
		return document.SeverityInfo
	}
}

// authorizationDateLayouts covers the timestamp shapes the SRI has been seen
// to emit.
var authorizationDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
}

func parseAuthorizationDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range authorizationDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}

// joinMessages concatenates message texts into a single failure message.
func joinMessages(messages []document.Message) string {
	if len(messages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		text := m.Text
		if m.AdditionalInfo != "" {
			text += " (" + m.AdditionalInfo + ")"
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "; ")
}
