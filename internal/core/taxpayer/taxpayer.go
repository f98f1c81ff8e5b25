package taxpayer

import "strings"

// Taxpayer is the consolidated registration record the SRI keeps per RUC.
// The JSON tags follow the field names of the catastro REST service.
type Taxpayer struct {
	NumeroRuc                    string     `json:"numeroRuc"`
	RazonSocial                  string     `json:"razonSocial"`
	EstadoContribuyente          string     `json:"estadoContribuyenteRuc"`
	ActividadEconomicaPrincipal  string     `json:"actividadEconomicaPrincipal"`
	TipoContribuyente            string     `json:"tipoContribuyente"`
	Regimen                      string     `json:"regimen"`
	Categoria                    string     `json:"categoria"`
	ObligadoLlevarContabilidad   string     `json:"obligadoLlevarContabilidad"`
	AgenteRetencion              string     `json:"agenteRetencion"`
	ContribuyenteEspecial        string     `json:"contribuyenteEspecial"`
	InformacionFechas            FechasInfo `json:"informacionFechasContribuyente"`
	ContribuyenteFantasma        string     `json:"contribuyenteFantasma"`
	TransaccionesInexistentes    string     `json:"transaccionesInexistente"`
	MotivoCancelacionSuspension  string     `json:"motivoCancelacionSuspension"`

	// Derived from the first establishment when one exists.
	NombreComercial string `json:"nombreComercial,omitempty"`
	Direccion       string `json:"direccion,omitempty"`
	Correo          string `json:"correo,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
}

// FechasInfo carries the activity date milestones of a taxpayer.
type FechasInfo struct {
	FechaInicioActividades string `json:"fechaInicioActividades"`
	FechaCese              string `json:"fechaCese"`
	FechaReinicio          string `json:"fechaReinicioActividades"`
	FechaActualizacion     string `json:"fechaActualizacion"`
}

// Establishment is a registered place of business attached to a RUC.
type Establishment struct {
	NombreFantasiaComercial string `json:"nombreFantasiaComercial"`
	TipoEstablecimiento     string `json:"tipoEstablecimiento"`
	DireccionCompleta       string `json:"direccionCompleta"`
	Estado                  string `json:"estado"`
	NumeroEstablecimiento   string `json:"numeroEstablecimiento"`
	Matriz                  string `json:"matriz"`
}

// CompleteTaxpayer combines the consolidated record with its establishments.
type CompleteTaxpayer struct {
	Contribuyente    Taxpayer        `json:"contribuyente"`
	Establecimientos []Establishment `json:"establecimientos"`
}

// NationalIDRecord is the civil registry answer for a cédula lookup.
// An empty FechaDefuncion means the person is alive.
type NationalIDRecord struct {
	Identificacion  string `json:"identificacion"`
	NombreCompleto  string `json:"nombreCompleto"`
	FechaDefuncion  string `json:"fechaDefuncion"`
}

// Compose builds a CompleteTaxpayer applying the derivation rule: when the
// establishment list is non-empty, element 0's address always replaces the
// parent record's, and its trade name replaces the commercial name only when
// it is non-blank.
func Compose(t Taxpayer, establishments []Establishment) CompleteTaxpayer {
	if len(establishments) > 0 {
		first := establishments[0]
		t.Direccion = first.DireccionCompleta
		if strings.TrimSpace(first.NombreFantasiaComercial) != "" {
			t.NombreComercial = first.NombreFantasiaComercial
		}
	}
	return CompleteTaxpayer{Contribuyente: t, Establecimientos: establishments}
}

// ValidRUC reports whether the identifier is a well-formed 13-digit RUC.
func ValidRUC(id string) bool {
	return allDigits(id, 13)
}

// ValidCedula reports whether the identifier is a well-formed 10-digit cédula.
func ValidCedula(id string) bool {
	return allDigits(id, 10)
}

func allDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
