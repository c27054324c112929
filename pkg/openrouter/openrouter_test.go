package openrouter

import "testing"

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if client := NewClient(Config{}); client != nil {
		t.Fatal("expected nil client without an api key")
	}
	if client := NewClient(Config{APIKey: "sk-test"}); client == nil {
		t.Fatal("expected client with an api key")
	}
}
