package publishers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: HTTP
    enabled: true
    http:
      url: https://example.com/2
  - id: graph
    type: neo4j
    neo4j:
      uri: neo4j://localhost:7687
      username: neo4j
      password: secret
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" || enabled[1].ID != "graph" {
		t.Fatalf("expected http2 and graph enabled, got %#v", enabled)
	}
	if enabled[0].Type != TypeHTTP || enabled[0].HTTP.Method != "POST" || enabled[0].HTTP.TimeoutSeconds != 5 {
		t.Fatalf("expected normalized http config, got %#v", enabled[0].HTTP)
	}
	if cfg, ok := reg.ByID("graph"); !ok || cfg.Neo4j.Username != "neo4j" {
		t.Fatalf("expected neo4j config, got %#v", cfg)
	}
}

func TestValidatePublisherConfigRejectsMissingBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "g1", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubConfig{ProjectID: "p"}},
		{ID: "n1", Type: TypeNeo4j, Neo4j: &Neo4jPublisherConfig{}},
		{ID: "", Type: TypeHTTP},
		{ID: "x"},
		{ID: "q2", Type: TypeSQS, SQS: &SQSPublisherConfig{
			QueueURL:  "https://q",
			Region:    "us-east-1",
			AWSAccess: AWSAccess{AccessKeyID: "only-half"},
		}},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Errorf("expected validation error for %#v", cfg)
		}
	}
}

func TestLoadRegistryReadsInlineAWSAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: local-sqs
    type: sqs
    sqs:
      uri: http://localhost:4566/000000000000/lookups
      region: us-east-1
      endpoint: " http://localhost:4566 "
      access_key_id: test
      secret_access_key: test
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, ok := reg.ByID("local-sqs")
	if !ok {
		t.Fatal("expected local-sqs publisher")
	}
	if cfg.SQS.Endpoint != "http://localhost:4566" || cfg.SQS.AccessKeyID != "test" {
		t.Fatalf("unexpected aws access %#v", cfg.SQS.AWSAccess)
	}
}

func TestSanitizePublisherConfigCopiesBlocks(t *testing.T) {
	orig := &HTTPPublisherConfig{URL: " https://example.com ", Method: "put"}
	cfg := sanitizePublisherConfig(PublisherConfig{ID: " hook ", Type: " HTTP ", HTTP: orig})

	if cfg.ID != "hook" || cfg.Type != TypeHTTP {
		t.Fatalf("unexpected id/type %q/%q", cfg.ID, cfg.Type)
	}
	if cfg.HTTP.URL != "https://example.com" || cfg.HTTP.Method != "PUT" || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("unexpected http block %#v", cfg.HTTP)
	}
	if orig.URL != " https://example.com " {
		t.Fatalf("caller's block was modified: %#v", orig)
	}
	if err := validatePublisherConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidatePublisherConfigRejectsUnknownType(t *testing.T) {
	err := validatePublisherConfig(PublisherConfig{ID: "x", Type: "kafka"})
	if err == nil || !strings.Contains(err.Error(), `unsupported type "kafka"`) {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}
