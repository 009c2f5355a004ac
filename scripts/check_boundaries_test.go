package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComplianceEngineRespectsLayering(t *testing.T) {
	if violations := collectViolations(filepath.Join("..", "contexts")); len(violations) != 0 {
		for _, v := range violations {
			t.Errorf("%s:%d imports %q (%s)", v.File, v.Line, v.Import, v.Rule)
		}
	}
}

func TestDomainImportingAdapterIsFlagged(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contexts")
	dir := filepath.Join(root, "site-compliance", "compliance-engine", "domain", "services")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	source := `package services

import (
	"github.com/redis/go-redis/v9"
	_ "sitecompliance/contexts/site-compliance/compliance-engine/adapters/memory"
	_ "sitecompliance/contexts/other/service/domain"
)

var _ redis.Cmdable
`
	if err := os.WriteFile(filepath.Join(dir, "bad.go"), []byte(source), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	violations := collectViolations(root)
	rules := map[string]bool{}
	for _, v := range violations {
		rules[v.Rule] = true
	}
	for _, want := range []string{
		"domain must not import adapters",
		"domain import is outside explicit allowlist",
		"cross-service imports are forbidden",
	} {
		if !rules[want] {
			t.Fatalf("expected rule %q in %+v", want, violations)
		}
	}
}
