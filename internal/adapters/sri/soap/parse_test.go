package soap

import (
	"testing"
	"time"

	"github.com/yamgooo/sri-client-go/internal/core/document"
)

const receptionReturnedReply = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:validarComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.recepcion">
      <RespuestaRecepcionComprobante>
        <estado>DEVUELTA</estado>
        <comprobantes>
          <comprobante>
            <claveAcceso>2908202601179001691900110010010000000011234567813</claveAcceso>
            <mensajes>
              <mensaje>
                <identificador>45</identificador>
                <mensaje>ERROR SECUENCIAL REGISTRADO</mensaje>
                <informacionAdicional>Clave de acceso registrada</informacionAdicional>
                <tipo>ERROR</tipo>
              </mensaje>
            </mensajes>
          </comprobante>
        </comprobantes>
      </RespuestaRecepcionComprobante>
    </ns2:validarComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

func TestParseReceptionReply_Returned(t *testing.T) {
	reply, err := parseReceptionReply(receptionReturnedReply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply.status != "DEVUELTA" {
		t.Errorf("expected estado DEVUELTA, got %q", reply.status)
	}
	if len(reply.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(reply.messages))
	}

	msg := reply.messages[0]
	if msg.Identifier != "45" {
		t.Errorf("unexpected identifier %q", msg.Identifier)
	}
	if msg.Text != "ERROR SECUENCIAL REGISTRADO" {
		t.Errorf("unexpected text %q", msg.Text)
	}
	if msg.AdditionalInfo != "Clave de acceso registrada" {
		t.Errorf("unexpected additional info %q", msg.AdditionalInfo)
	}
	if msg.Severity != document.SeverityError {
		t.Errorf("unexpected severity %q", msg.Severity)
	}
}

func TestParseReceptionReply_ReceivedWithoutPrefix(t *testing.T) {
	// The certification environment omits namespace prefixes on the payload.
	body := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <respuesta><estado> RECIBIDA </estado></respuesta>
  </soapenv:Body>
</soapenv:Envelope>`

	reply, err := parseReceptionReply(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.status != "RECIBIDA" {
		t.Errorf("expected trimmed estado RECIBIDA, got %q", reply.status)
	}
	if len(reply.messages) != 0 {
		t.Errorf("expected no messages, got %d", len(reply.messages))
	}
}

const authorizationAuthorizedReply = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:autorizacionComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.autorizacion">
      <RespuestaAutorizacionComprobante>
        <claveAccesoConsultada>2908202601179001691900110010010000000011234567813</claveAccesoConsultada>
        <numeroComprobantes>1</numeroComprobantes>
        <autorizaciones>
          <autorizacion>
            <estado>AUTORIZADO</estado>
            <numeroAutorizacion>2908202601179001691900110010010000000011234567813</numeroAutorizacion>
            <fechaAutorizacion>2026-08-29T10:15:30-05:00</fechaAutorizacion>
            <ambiente>PRUEBAS</ambiente>
            <comprobante>&lt;factura&gt;...&lt;/factura&gt;</comprobante>
          </autorizacion>
        </autorizaciones>
      </RespuestaAutorizacionComprobante>
    </ns2:autorizacionComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

func TestParseAuthorizationReply_Authorized(t *testing.T) {
	reply, err := parseAuthorizationReply(authorizationAuthorizedReply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reply.containerFound {
		t.Fatal("expected container to be found")
	}
	if reply.entryCount != 1 {
		t.Fatalf("expected 1 entry, got %d", reply.entryCount)
	}
	if reply.status != "AUTORIZADO" {
		t.Errorf("unexpected estado %q", reply.status)
	}
	if reply.authorizationNumber != "2908202601179001691900110010010000000011234567813" {
		t.Errorf("unexpected authorization number %q", reply.authorizationNumber)
	}
	if reply.environment != "PRUEBAS" {
		t.Errorf("unexpected ambiente %q", reply.environment)
	}
	if reply.documentContent != "<factura>...</factura>" {
		t.Errorf("unexpected comprobante %q", reply.documentContent)
	}

	if reply.authorizationDate == nil {
		t.Fatal("expected authorization date to be parsed")
	}
	expected, _ := time.Parse(time.RFC3339, "2026-08-29T10:15:30-05:00")
	if !reply.authorizationDate.Equal(expected) {
		t.Errorf("expected date %v, got %v", expected, reply.authorizationDate)
	}
}

func TestParseAuthorizationReply_MissingContainer(t *testing.T) {
	body := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body><unexpected/></soap:Body>
</soap:Envelope>`

	reply, err := parseAuthorizationReply(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.containerFound {
		t.Error("expected container not found")
	}
}

func TestParseAuthorizationReply_ZeroEntries(t *testing.T) {
	body := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <RespuestaAutorizacionComprobante>
      <numeroComprobantes>0</numeroComprobantes>
      <autorizaciones/>
    </RespuestaAutorizacionComprobante>
  </soap:Body>
</soap:Envelope>`

	reply, err := parseAuthorizationReply(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.containerFound {
		t.Error("expected container to be found")
	}
	if reply.entryCount != 0 {
		t.Errorf("expected 0 entries, got %d", reply.entryCount)
	}
}

func TestParseAuthorizationDate_UnparseableIsAbsent(t *testing.T) {
	if got := parseAuthorizationDate("not a date"); got != nil {
		t.Errorf("expected nil for unparseable date, got %v", got)
	}
	if got := parseAuthorizationDate("  "); got != nil {
		t.Errorf("expected nil for blank date, got %v", got)
	}
	if got := parseAuthorizationDate("29/08/2026 10:15:30"); got == nil {
		t.Error("expected legacy layout to parse")
	}
}

func TestJoinMessages(t *testing.T) {
	messages := []document.Message{
		{Text: "ERROR SECUENCIAL", AdditionalInfo: "ya registrado"},
		{Text: "CLAVE INVALIDA"},
	}

	if got := joinMessages(messages); got != "ERROR SECUENCIAL (ya registrado); CLAVE INVALIDA" {
		t.Errorf("unexpected joined message: %q", got)
	}
	if got := joinMessages(nil); got != "" {
		t.Errorf("expected empty join for no messages, got %q", got)
	}
}
