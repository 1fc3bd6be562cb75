package directive

import (
	"testing"

	"busindex/internal/source"
	"busindex/subscriber"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		ok      bool
		wantErr bool
		name    string
		args    int
	}{
		{"//eventbus:subscribe", true, false, "subscribe", 0},
		{"//eventbus:subscribe mode=async priority=3 sticky", true, false, "subscribe", 3},
		{"// eventbus:subscribe", false, false, "", 0},
		{"//go:generate busindex generate", false, false, "", 0},
		{"//eventbus:", true, true, "", 0},
		{"//eventbus:subscribe =x", true, true, "subscribe", 0},
		{"/* eventbus:subscribe */", false, false, "", 0},
	}
	for _, tt := range tests {
		d, ok, err := Parse(tt.text, Namespace)
		if ok != tt.ok || (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) ok=%v err=%v, want ok=%v wantErr=%v", tt.text, ok, err, tt.ok, tt.wantErr)
			continue
		}
		if !ok || err != nil {
			continue
		}
		if d.Name != tt.name || len(d.Args) != tt.args {
			t.Errorf("Parse(%q) = %+v", tt.text, d)
		}
		if d.Qualified() != "eventbus:"+tt.name {
			t.Errorf("unexpected qualified name %q", d.Qualified())
		}
	}
}

func TestDecodeSubscribe(t *testing.T) {
	tests := []struct {
		text    string
		want    Subscribe
		wantErr bool
	}{
		{"//eventbus:subscribe", Subscribe{ThreadMode: subscriber.Main}, false},
		{"//eventbus:subscribe mode=background priority=-4", Subscribe{ThreadMode: subscriber.Background, Priority: -4}, false},
		{"//eventbus:subscribe sticky=false sticky", Subscribe{Sticky: true}, false},
		{"//eventbus:subscribe sticky=yes", Subscribe{}, true},
		{"//eventbus:subscribe priority=high", Subscribe{}, true},
		{"//eventbus:subscribe priority=99999999999", Subscribe{}, true},
		{"//eventbus:subscribe mode", Subscribe{}, true},
		{"//eventbus:subscribe mode=ui", Subscribe{}, true},
		{"//eventbus:subscribe colour=red", Subscribe{}, true},
	}
	for _, tt := range tests {
		d, ok, err := Parse(tt.text, Namespace)
		if !ok || err != nil {
			t.Fatalf("Parse(%q) failed: ok=%v err=%v", tt.text, ok, err)
		}
		got, err := DecodeSubscribe(d)
		if (err != nil) != tt.wantErr {
			t.Errorf("DecodeSubscribe(%q) err = %v, wantErr %v", tt.text, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("DecodeSubscribe(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Add(Directive{Namespace: Namespace, Name: "subscribe", Loc: source.Location{Path: "b.go", Line: 1}})
	r.Add(Directive{Namespace: Namespace, Name: "subscriber", Loc: source.Location{Path: "a.go", Line: 9}})
	r.Add(Directive{Namespace: Namespace, Name: "subscribe", Loc: source.Location{Path: "a.go", Line: 2}})

	if r.Len() != 3 {
		t.Fatalf("expected 3 directives, got %d", r.Len())
	}
	all := r.All()
	if all[0].Loc.Path != "a.go" || all[0].Loc.Line != 2 {
		t.Errorf("All must be sorted by location, got %+v", all[0])
	}
	if got := r.FilterByName("subscribe"); len(got) != 2 {
		t.Errorf("expected 2 subscribe directives, got %d", len(got))
	}
	if got := r.FilterByName(); len(got) != 3 {
		t.Errorf("empty filter returns all, got %d", len(got))
	}
	unknown := r.Unknown(NameSubscribe)
	if len(unknown) != 1 || unknown[0].Name != "subscriber" {
		t.Errorf("unexpected unknown directives: %+v", unknown)
	}
}
