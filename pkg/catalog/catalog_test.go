package catalog

import "testing"

func TestCatalogLoad(t *testing.T) {
	c := New()
	if c.Loaded() {
		t.Fatalf("fresh catalog reports loaded")
	}

	c.Load("gpt-4o-mini", "openai", "gpt-4o", "gpt-image-1", 4096, []Entry{
		{Model: "gpt-4o-mini", Provider: "openai", Label: "Default"},
	})

	if !c.Loaded() {
		t.Fatalf("catalog not loaded after Load")
	}
	model, provider := c.DefaultChatModel()
	if model != "gpt-4o-mini" || provider != "openai" {
		t.Errorf("default = %q/%q", model, provider)
	}
	if c.DocumentChatModel() != "gpt-4o" || c.DefaultImageModel() != "gpt-image-1" {
		t.Errorf("doc/image models wrong")
	}
	if c.MaxTokens() != 4096 {
		t.Errorf("max tokens = %d", c.MaxTokens())
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d", len(c.Entries()))
	}
}

func TestCatalogEmptyDefaultStaysUnloaded(t *testing.T) {
	c := New()
	c.Load("", "openai", "gpt-4o", "gpt-image-1", 4096, nil)
	if c.Loaded() {
		t.Errorf("catalog with no default chat model reports loaded")
	}
}

func TestCatalogEntriesCopy(t *testing.T) {
	c := New()
	c.Load("m", "p", "", "", 0, []Entry{{Model: "m", Label: "one"}})

	got := c.Entries()
	got[0].Label = "mutated"
	if c.Entries()[0].Label != "one" {
		t.Errorf("Entries returned a shared slice")
	}
}
