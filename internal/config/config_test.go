package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.CorpusSource != "file" || cfg.CorpusPath != "data/road_issues_example.json" {
		t.Fatalf("corpus defaults: %+v", cfg)
	}
	if cfg.OllamaEmbedModel != "nomic-embed-text" {
		t.Fatalf("OllamaEmbedModel = %q", cfg.OllamaEmbedModel)
	}
	if cfg.GroqModel != "llama-3.1-8b-instant" || cfg.GenMaxTokens != 300 {
		t.Fatalf("generation defaults: %+v", cfg)
	}
	if cfg.GenTemperature != 0.6 || cfg.GenTopP != 0.9 || cfg.GenTimeoutSeconds != 30 {
		t.Fatalf("generation tuning defaults: %+v", cfg)
	}
	if cfg.RetrievalTopK != 5 || cfg.RetrievalMinScore != 0.0 {
		t.Fatalf("retrieval defaults: %+v", cfg)
	}
	if cfg.ContextMaxEntries != 6 || cfg.ContextMaxChars != 4000 {
		t.Fatalf("context defaults: %+v", cfg)
	}
	if cfg.APIRateLimitRPS != 0 || cfg.APIRateLimitBurst != 20 {
		t.Fatalf("rate limit defaults: %+v", cfg)
	}
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("CORPUS_SOURCE", "postgres")
	t.Setenv("RETRIEVAL_TOP_K", "3")
	t.Setenv("RETRIEVAL_MIN_SCORE", "0.45")
	t.Setenv("CUE_TABLE_PATH", "/etc/rsa/cues.yaml")
	t.Setenv("API_RATE_LIMIT_RPS", "25")

	cfg := Load()

	if cfg.APIPort != "9090" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.CorpusSource != "postgres" {
		t.Fatalf("CorpusSource = %q", cfg.CorpusSource)
	}
	if cfg.RetrievalTopK != 3 || cfg.RetrievalMinScore != 0.45 {
		t.Fatalf("retrieval overrides: %+v", cfg)
	}
	if cfg.CueTablePath != "/etc/rsa/cues.yaml" {
		t.Fatalf("CueTablePath = %q", cfg.CueTablePath)
	}
	if cfg.APIRateLimitRPS != 25 {
		t.Fatalf("APIRateLimitRPS = %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "many")
	t.Setenv("GEN_TEMPERATURE", "warm")

	cfg := Load()

	if cfg.RetrievalTopK != 5 {
		t.Fatalf("RetrievalTopK = %d, want default 5", cfg.RetrievalTopK)
	}
	if cfg.GenTemperature != 0.6 {
		t.Fatalf("GenTemperature = %v, want default 0.6", cfg.GenTemperature)
	}
}
