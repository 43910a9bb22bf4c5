package codec

import "testing"

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line      string
		wantKind  LineKind
		wantValue string
	}{
		{"BEGIN:VCARD", LineBegin, ""},
		{"END:VCARD", LineEnd, ""},
		{"FN:Jane Doe", LineName, "Jane Doe"},
		{"TEL:555-1234", LinePhone, "555-1234"},
		{"TEL;TYPE=CELL:555-1234", LinePhone, "555-1234"},
		{"TEL;TYPE=\"voice,cell\";PREF=1:+1 555", LinePhone, "+1 555"},
		{"EMAIL:jane@x.com", LineEmail, "jane@x.com"},
		{"ADR:;;12 Main St;;Springfield;;", LineAddress, "12 Main St Springfield"},
		{"ADR;TYPE=HOME:;;Flat  4;Main Rd", LineAddress, "Flat 4 Main Rd"},
		{`ADR:;;Flat 2\; 10 High St\, Leeds;;;;`, LineAddress, "Flat 2; 10 High St, Leeds"},
		{`ADR:;;C:\\temp;;;;`, LineAddress, `C:\temp`},
		{"BDAY:19851224", LineBirthday, "1985-12-24"},
		{"BDAY:1985-12-24", LineBirthday, "1985-12-24"},
		{"BDAY:--1224", LineBirthday, "--1224"},
		{"VERSION:3.0", LineUnrecognized, ""},
		{"tel:555", LineUnrecognized, ""},
		{"TELEX:555", LineUnrecognized, ""},
		{"TEL", LineUnrecognized, ""},
		{"EMAIL;TYPE=WORK:jane@x.com", LineUnrecognized, ""},
		{"", LineUnrecognized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ClassifyLine(tt.line)
			if got.Kind != tt.wantKind {
				t.Errorf("ClassifyLine(%q).Kind = %v, want %v", tt.line, got.Kind, tt.wantKind)
			}
			if got.Value != tt.wantValue {
				t.Errorf("ClassifyLine(%q).Value = %q, want %q", tt.line, got.Value, tt.wantValue)
			}
		})
	}
}

func TestNormalizeBirthday(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"  ":         "",
		"1990-02-03": "1990-02-03",
		"19900203":   "1990-02-03",
		" 19900203 ": "1990-02-03",
		"1990-02-30": "1990-02-30",
		"3rd Feb":    "3rd Feb",
		"1990/02/03": "1990/02/03",
	}
	for in, want := range tests {
		if got := NormalizeBirthday(in); got != want {
			t.Errorf("NormalizeBirthday(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompactBirthday(t *testing.T) {
	got, err := CompactBirthday("1985-12-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "19851224" {
		t.Errorf("CompactBirthday = %q, want 19851224", got)
	}

	if _, err := CompactBirthday("sometime in May"); err == nil {
		t.Error("expected error for non-date birthday")
	}
}
