package langhint

import "testing"

func TestDetect_Cyrillic(t *testing.T) {
	h := Detect("Продам конспекты пишите в личные сообщения всем привет")
	if h.Script != "Cyrillic" {
		t.Fatalf("script = %q, want Cyrillic", h.Script)
	}
	if h.Lang != "ru" {
		t.Fatalf("lang = %q, want ru", h.Lang)
	}
}

func TestDetect_LatinIsAmbiguous(t *testing.T) {
	h := Detect("ciao ragazzi qualcuno ha gli appunti di diritto privato")
	if h.Script != "Latin" {
		t.Fatalf("script = %q, want Latin", h.Script)
	}
	if h.Lang != "" {
		t.Fatalf("latin text must not produce a lang code, got %q", h.Lang)
	}
}

func TestDetect_ShortTextNoLang(t *testing.T) {
	// plenty of script signal but under the letter floor
	if h := Detect("Привет"); h.Lang != "" {
		t.Fatalf("short text must not produce a lang code, got %q", h.Lang)
	}
}

func TestDetect_Empty(t *testing.T) {
	if h := Detect("123 !!! ???"); h.Script != "" || h.Lang != "" {
		t.Fatalf("no letters must yield empty hint, got %+v", h)
	}
}

func TestDisallowed(t *testing.T) {
	ru := "Продам конспекты пишите в личные сообщения всем привет"

	if !Disallowed(ru, []string{"it"}) {
		t.Fatal("cyrillic text must be disallowed for italian-only groups")
	}
	if Disallowed(ru, []string{"it", "ru"}) {
		t.Fatal("allowed language must pass")
	}
	if Disallowed(ru, []string{"any"}) {
		t.Fatal(`"any" must allow everything`)
	}
	if Disallowed(ru, nil) {
		t.Fatal("empty allow list must allow everything")
	}
	// uncertain never rejects
	if Disallowed("ciao", []string{"it"}) {
		t.Fatal("short text must never be rejected")
	}
	if Disallowed("qualcuno ha gli appunti per l'esame di domani?", []string{"it"}) {
		t.Fatal("latin text must never be rejected on script alone")
	}
}
