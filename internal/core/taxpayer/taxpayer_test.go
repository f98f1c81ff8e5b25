package taxpayer

import "testing"

func TestValidRUC(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{"valid 13 digits", "1790016919001", true},
		{"too short", "179001691900", false},
		{"too long", "17900169190011", false},
		{"cedula length", "1712345678", false},
		{"letters", "179001691900a", false},
		{"whitespace", "1790016919 01", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidRUC(tt.id); got != tt.expected {
				t.Errorf("ValidRUC(%q): expected %v, got %v", tt.id, tt.expected, got)
			}
		})
	}
}

func TestValidCedula(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{"valid 10 digits", "1712345678", true},
		{"too short", "171234567", false},
		{"ruc length", "1790016919001", false},
		{"letters", "17123456x8", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCedula(tt.id); got != tt.expected {
				t.Errorf("ValidCedula(%q): expected %v, got %v", tt.id, tt.expected, got)
			}
		})
	}
}

func TestCompose_DerivesFromFirstEstablishment(t *testing.T) {
	base := Taxpayer{
		NumeroRuc:       "1790016919001",
		RazonSocial:     "EMPRESA DE PRUEBA S.A.",
		NombreComercial: "NOMBRE ORIGINAL",
		Direccion:       "DIRECCION ORIGINAL",
	}
	establishments := []Establishment{
		{
			NombreFantasiaComercial: "SUCURSAL CENTRO",
			DireccionCompleta:       "AV. AMAZONAS N26-53 Y SANTA MARIA",
			NumeroEstablecimiento:   "001",
		},
		{
			NombreFantasiaComercial: "SUCURSAL NORTE",
			DireccionCompleta:       "AV. DE LA PRENSA 123",
			NumeroEstablecimiento:   "002",
		},
	}

	complete := Compose(base, establishments)

	if complete.Contribuyente.Direccion != "AV. AMAZONAS N26-53 Y SANTA MARIA" {
		t.Errorf("expected address from first establishment, got %q", complete.Contribuyente.Direccion)
	}
	if complete.Contribuyente.NombreComercial != "SUCURSAL CENTRO" {
		t.Errorf("expected trade name from first establishment, got %q", complete.Contribuyente.NombreComercial)
	}
	if len(complete.Establecimientos) != 2 {
		t.Errorf("expected 2 establishments, got %d", len(complete.Establecimientos))
	}
}

func TestCompose_BlankTradeNameKeepsOriginal(t *testing.T) {
	base := Taxpayer{NombreComercial: "NOMBRE ORIGINAL", Direccion: "DIRECCION ORIGINAL"}
	establishments := []Establishment{
		{NombreFantasiaComercial: "   ", DireccionCompleta: "CALLE NUEVA 456"},
	}

	complete := Compose(base, establishments)

	// The address always follows element 0; the trade name only when non-blank.
	if complete.Contribuyente.Direccion != "CALLE NUEVA 456" {
		t.Errorf("expected address replaced even for blank trade name, got %q", complete.Contribuyente.Direccion)
	}
	if complete.Contribuyente.NombreComercial != "NOMBRE ORIGINAL" {
		t.Errorf("expected original trade name kept, got %q", complete.Contribuyente.NombreComercial)
	}
}

func TestCompose_EmptyEstablishments(t *testing.T) {
	base := Taxpayer{NombreComercial: "NOMBRE", Direccion: "DIRECCION"}

	complete := Compose(base, nil)

	if complete.Contribuyente.NombreComercial != "NOMBRE" || complete.Contribuyente.Direccion != "DIRECCION" {
		t.Error("expected parent record untouched when no establishments exist")
	}
	if len(complete.Establecimientos) != 0 {
		t.Errorf("expected no establishments, got %d", len(complete.Establecimientos))
	}
}
