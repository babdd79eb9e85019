package config

import (
	"reflect"
	"testing"
)

func TestFlatten(t *testing.T) {
	nested := map[string]any{
		"data_dir": "/tmp/data",
		"llm": map[string]any{
			"provider": "openai",
			"model":    "gpt-4",
		},
		"summarize": map[string]any{
			"batch_size": float64(5),
		},
	}

	flat := Flatten(nested)

	want := map[string]any{
		"data_dir":             "/tmp/data",
		"llm.provider":         "openai",
		"llm.model":            "gpt-4",
		"summarize.batch_size": float64(5),
	}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Flatten = %v, want %v", flat, want)
	}
}

func TestFlattenEmpty(t *testing.T) {
	flat := Flatten(map[string]any{})
	if len(flat) != 0 {
		t.Errorf("Flatten of empty map = %v", flat)
	}
}

func TestUnflatten(t *testing.T) {
	flat := map[string]any{
		"log_level":    "info",
		"llm.provider": "github",
		"llm.model":    "xai/grok-3-mini",
	}

	nested := Unflatten(flat)

	if nested["log_level"] != "info" {
		t.Errorf("log_level = %v", nested["log_level"])
	}
	llm, ok := nested["llm"].(map[string]any)
	if !ok {
		t.Fatalf("llm is %T, want map", nested["llm"])
	}
	if llm["provider"] != "github" || llm["model"] != "xai/grok-3-mini" {
		t.Errorf("llm = %v", llm)
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"data_dir": "/tmp/data",
		"telegram": map[string]any{
			"token":   "abc",
			"chat_id": float64(42),
		},
		"http": map[string]any{
			"enabled": true,
			"listen":  "127.0.0.1:8077",
		},
	}

	got := Unflatten(Flatten(nested))
	if !reflect.DeepEqual(got, nested) {
		t.Errorf("round trip = %v, want %v", got, nested)
	}
}

func TestIsSecretKey(t *testing.T) {
	if !IsSecretKey("llm.api_key") {
		t.Error("llm.api_key should be secret")
	}
	if !IsSecretKey("telegram.token") {
		t.Error("telegram.token should be secret")
	}
	if IsSecretKey("llm.model") {
		t.Error("llm.model should not be secret")
	}
}

func TestMaskSecrets(t *testing.T) {
	flat := map[string]any{
		"llm.api_key":    "sk-abcdef123456",
		"telegram.token": "tok",
		"llm.model":      "gpt-4",
		"empty.secret":   "",
	}

	masked := MaskSecrets(flat)

	if masked["llm.api_key"] != "***3456" {
		t.Errorf("llm.api_key = %v", masked["llm.api_key"])
	}
	if masked["telegram.token"] != "***tok" {
		t.Errorf("short secret = %v", masked["telegram.token"])
	}
	if masked["llm.model"] != "gpt-4" {
		t.Errorf("non-secret changed: %v", masked["llm.model"])
	}
}
