// Package soap submits signed documents to the SRI reception and
// authorization web services.
package soap

import (
	"encoding/base64"
	"fmt"

	"github.com/beevik/etree"
)

const (
	soapNS          = "http://schemas.xmlsoap.org/soap/envelope/"
	receptionNS     = "http://ec.gob.sri.ws.recepcion"
	authorizationNS = "http://ec.gob.sri.ws.autorizacion"
)

// buildReceptionEnvelope wraps a signed document, base64-encoded, in the
// validarComprobante SOAP operation.
func buildReceptionEnvelope(signedXML []byte) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	envelope := doc.CreateElement("soapenv:Envelope")
	envelope.CreateAttr("xmlns:soapenv", soapNS)
	envelope.CreateAttr("xmlns:ec", receptionNS)

	envelope.CreateElement("soapenv:Header")
	body := envelope.CreateElement("soapenv:Body")

	operation := body.CreateElement("ec:validarComprobante")
	operation.CreateElement("xml").SetText(base64.StdEncoding.EncodeToString(signedXML))

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize reception envelope: %w", err)
	}
	return out, nil
}

// buildAuthorizationEnvelope wraps an access key in the
// autorizacionComprobante SOAP operation.
func buildAuthorizationEnvelope(accessKey string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	envelope := doc.CreateElement("soapenv:Envelope")
	envelope.CreateAttr("xmlns:soapenv", soapNS)
	envelope.CreateAttr("xmlns:ec", authorizationNS)

	envelope.CreateElement("soapenv:Header")
	body := envelope.CreateElement("soapenv:Body")

	operation := body.CreateElement("ec:autorizacionComprobante")
	operation.CreateElement("claveAccesoComprobante").SetText(accessKey)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize authorization envelope: %w", err)
	}
	return out, nil
}

// extractAccessKey pulls the claveAcceso element out of a signed document.
// Returns an empty string when the XML is malformed or the element is absent.
func extractAccessKey(signedXML []byte) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(signedXML); err != nil {
		return ""
	}

	element := doc.FindElement("//claveAcceso")
	if element == nil {
		return ""
	}
	return element.Text()
}
