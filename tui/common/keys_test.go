package common

import "testing"

func TestDefaultKeyMap_HasCriticalBindings(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ToggleHints.Keys()) == 0 || km.ToggleHints.Keys()[0] != "?" {
		t.Fatalf("expected ? key binding for hints")
	}
	if len(km.ForceQuit.Keys()) == 0 || km.ForceQuit.Keys()[0] != "ctrl+c" {
		t.Fatalf("expected ctrl+c force quit binding")
	}
	if len(km.Sections) != len(sectionNames) {
		t.Fatalf("expected a number key per section, got %d", len(km.Sections))
	}
}

func TestSectionFor(t *testing.T) {
	km := DefaultKeyMap()
	if s, ok := km.SectionFor("2"); !ok || s != SectionNotifications {
		t.Fatalf("expected notifications on 2, got %v %v", s, ok)
	}
	if s, ok := km.SectionFor("7"); !ok || s != SectionSettings || s.String() != "Settings" {
		t.Fatalf("expected settings on 7, got %v %v", s, ok)
	}
	if s, ok := km.SectionFor("8"); !ok || s != SectionExplore {
		t.Fatalf("expected explore on 8, got %v %v", s, ok)
	}
	if _, ok := km.SectionFor("9"); ok {
		t.Fatalf("9 is not bound")
	}
}
