package gacha

import (
	"net/http"
	"strings"
	"testing"
)

func newKeyRequest(t *testing.T, method, url, token string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestDefaultCacheKeyFuncDeterminism(t *testing.T) {
	req1 := newKeyRequest(t, "GET", "https://api.example.com/characters/collection?page=1", "tok-a")
	req2 := newKeyRequest(t, "GET", "https://api.example.com/characters/collection?page=1", "tok-a")

	if DefaultCacheKeyFunc(req1) != DefaultCacheKeyFunc(req2) {
		t.Error("Identical requests must derive identical keys")
	}
}

func TestDefaultCacheKeyFuncComponents(t *testing.T) {
	base := newKeyRequest(t, "GET", "https://api.example.com/characters/collection?page=1", "tok-a")
	baseKey := DefaultCacheKeyFunc(base)

	variants := map[string]*http.Request{
		"method":     newKeyRequest(t, "HEAD", "https://api.example.com/characters/collection?page=1", "tok-a"),
		"path":       newKeyRequest(t, "GET", "https://api.example.com/characters/roll?page=1", "tok-a"),
		"params":     newKeyRequest(t, "GET", "https://api.example.com/characters/collection?page=2", "tok-a"),
		"credential": newKeyRequest(t, "GET", "https://api.example.com/characters/collection?page=1", "tok-b"),
	}

	for name, req := range variants {
		if DefaultCacheKeyFunc(req) == baseKey {
			t.Errorf("Changing %s must change the key", name)
		}
	}
}

func TestDefaultCacheKeyFuncParamOrderStable(t *testing.T) {
	req1 := newKeyRequest(t, "GET", "https://api.example.com/admin/characters?page=2&perPage=50", "")
	req2 := newKeyRequest(t, "GET", "https://api.example.com/admin/characters?perPage=50&page=2", "")

	if DefaultCacheKeyFunc(req1) != DefaultCacheKeyFunc(req2) {
		t.Error("Query serialization must be order-stable")
	}
}

func TestDefaultCacheKeyFuncVerblessDefaultsToGet(t *testing.T) {
	req := newKeyRequest(t, "GET", "https://api.example.com/banners", "")
	verbless := req.Clone(req.Context())
	verbless.Method = ""

	if DefaultCacheKeyFunc(req) != DefaultCacheKeyFunc(verbless) {
		t.Error("Verb-less requests must key as GET")
	}
}

func TestDefaultCacheKeyFuncNilURL(t *testing.T) {
	req := &http.Request{Method: "GET", Header: make(http.Header)}
	key := DefaultCacheKeyFunc(req)
	if key == "" {
		t.Error("Key derivation must succeed with missing components")
	}
	if !strings.HasPrefix(key, "GET:") {
		t.Errorf("Expected GET prefix, got %q", key)
	}
}

func TestCredentialFingerprint(t *testing.T) {
	if CredentialFingerprint("") != "anon" {
		t.Errorf("Expected 'anon' for missing credential, got %q", CredentialFingerprint(""))
	}

	fp1 := CredentialFingerprint("Bearer token-one")
	fp2 := CredentialFingerprint("Bearer token-one")
	fp3 := CredentialFingerprint("Bearer token-two")

	if fp1 != fp2 {
		t.Error("Fingerprint must be stable for the same credential")
	}
	if fp1 == fp3 {
		t.Error("Different credentials must fingerprint differently")
	}
	if len(fp1) != 16 {
		t.Errorf("Expected 16 hex chars, got %d (%q)", len(fp1), fp1)
	}
	if strings.Contains(fp1, "token") {
		t.Error("Fingerprint must not contain the raw token")
	}
}
