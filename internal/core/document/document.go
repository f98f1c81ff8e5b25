package document

import "time"

// Environment selects the SRI web service target.
type Environment int

const (
	// Test targets the certification endpoints (celcer).
	Test Environment = iota + 1
	// Production targets the live endpoints (cel).
	Production
)

func (e Environment) String() string {
	if e == Production {
		return "PRODUCCION"
	}
	return "PRUEBAS"
}

// Status classifies the SRI's answer to a document operation.
type Status string

const (
	// StatusReceived means the reception service accepted the document (RECIBIDA).
	StatusReceived Status = "RECIBIDA"
	// StatusReturned means the reception service rejected the document (DEVUELTA).
	StatusReturned Status = "DEVUELTA"
	// StatusAuthorized means the authorization service approved the document.
	StatusAuthorized Status = "AUTORIZADO"
	// StatusNotAuthorized means authorization was denied or unavailable.
	StatusNotAuthorized Status = "NO AUTORIZADO"
)

// Severity qualifies a message returned by the SRI.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "ADVERTENCIA"
	SeverityInfo    Severity = "INFORMATIVO"
)

// Message is a single diagnostic entry from an SRI reply.
type Message struct {
	Identifier     string   `json:"identifier"`
	Text           string   `json:"text"`
	AdditionalInfo string   `json:"additionalInfo,omitempty"`
	Severity       Severity `json:"severity"`
}

// ReceptionResult is the outcome of submitting a signed document for validation.
type ReceptionResult struct {
	Success      bool      `json:"success"`
	Status       Status    `json:"status"`
	AccessKey    string    `json:"accessKey,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
	ProcessedAt  time.Time `json:"processedAt"`
	RequestID    string    `json:"requestId"`
}

// AuthorizationResult is the outcome of requesting authorization for an access key.
type AuthorizationResult struct {
	Success             bool       `json:"success"`
	Status              Status     `json:"status"`
	AccessKey           string     `json:"accessKey,omitempty"`
	AuthorizationNumber string     `json:"authorizationNumber,omitempty"`
	AuthorizationDate   *time.Time `json:"authorizationDate,omitempty"`
	Environment         string     `json:"environment,omitempty"`
	DocumentContent     string     `json:"documentContent,omitempty"`
	DocumentCount       int        `json:"documentCount"`
	ErrorMessage        string     `json:"errorMessage,omitempty"`
	Messages            []Message  `json:"messages,omitempty"`
	ProcessedAt         time.Time  `json:"processedAt"`
	RequestID           string     `json:"requestId"`
}
