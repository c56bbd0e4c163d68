package coap

import (
	"testing"
)

func TestPathHelpers(t *testing.T) {
	msg := &Message{}
	msg.SetPath("/cit/s")

	values := msg.OptionValues(OptionURIPath)
	if len(values) != 2 || string(values[0]) != "cit" || string(values[1]) != "s" {
		t.Errorf("Uri-Path segments = %q", values)
	}
	if msg.Path() != "/cit/s" {
		t.Errorf("Path = %q, want /cit/s", msg.Path())
	}

	// SetPath replaces existing segments
	msg.SetPath("/cit/d")
	if msg.Path() != "/cit/d" {
		t.Errorf("Path after replace = %q, want /cit/d", msg.Path())
	}

	// No Uri-Path means root
	empty := &Message{}
	if empty.Path() != "/" {
		t.Errorf("empty Path = %q, want /", empty.Path())
	}
}

func TestSetOptionReplaces(t *testing.T) {
	msg := &Message{}
	msg.AddOption(3420, []byte{0x00, 0x01})
	msg.AddOption(3420, []byte{0x00, 0x02})
	msg.SetOption(3420, []byte{0x00, 0x03})

	values := msg.OptionValues(3420)
	if len(values) != 1 || values[0][1] != 0x03 {
		t.Errorf("values after SetOption = %v", values)
	}
}

func TestCodeClassification(t *testing.T) {
	if !CodeGET.IsRequest() {
		t.Error("GET should be a request")
	}
	if CodeContent.IsRequest() {
		t.Error("2.05 should not be a request")
	}
	if CodeEmpty.IsRequest() {
		t.Error("empty code should not be a request")
	}
	if CodeContent.Class() != 2 || CodeContent.Detail() != 5 {
		t.Errorf("2.05 decomposed as %d.%02d", CodeContent.Class(), CodeContent.Detail())
	}
	if got := CodeContent.String(); got != "2.05 Content" {
		t.Errorf("CodeContent.String() = %q", got)
	}
	if got := Code(0x9F).String(); got != "4.31" {
		t.Errorf("unknown code String() = %q, want 4.31", got)
	}
}

func TestNextMessageIDAdvances(t *testing.T) {
	a := NextMessageID()
	b := NextMessageID()
	if b != a+1 {
		t.Errorf("message IDs %d, %d; want consecutive", a, b)
	}
}

func TestNewToken(t *testing.T) {
	a := NewToken()
	b := NewToken()
	if len(a) != 4 || len(b) != 4 {
		t.Fatalf("token lengths %d, %d; want 4", len(a), len(b))
	}
	if string(a) == string(b) {
		t.Error("two fresh tokens are identical")
	}
}

func TestRegisterOptionIdempotent(t *testing.T) {
	def := OptionDef{ID: 64999, Name: "X-Test", Format: FormatUint}

	RegisterOption(def)
	RegisterOption(def) // must not panic or duplicate

	got, ok := LookupOption(64999)
	if !ok {
		t.Fatal("option not found after registration")
	}
	if got.Name != "X-Test" || got.Format != FormatUint {
		t.Errorf("definition = %+v", got)
	}
	if OptionName(64999) != "X-Test" {
		t.Errorf("OptionName = %q", OptionName(64999))
	}
	if OptionName(64998) != "64998" {
		t.Errorf("unregistered OptionName = %q, want decimal", OptionName(64998))
	}
}
