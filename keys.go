package gacha

import (
	"fmt"
	"hash/fnv"
	"net/http"
)

// anonFingerprint is the stable credential component for unauthenticated
// requests.
const anonFingerprint = "anon"

// CredentialFingerprint returns a short stable hash of an Authorization
// credential. The fingerprint scopes cache keys per logged-in identity
// without storing the raw token in the key.
func CredentialFingerprint(credential string) string {
	if credential == "" {
		return anonFingerprint
	}
	h := fnv.New64a()
	h.Write([]byte(credential))
	return fmt.Sprintf("%016x", h.Sum64())
}

// DefaultCacheKeyFunc derives the cache/pending key from method, host+path,
// the serialized query and the caller's credential fingerprint. The query is
// re-encoded through url.Values so the same parameter set always serializes
// in the same order. Two requests differing in any component never collide.
func DefaultCacheKeyFunc(req *http.Request) string {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var host, path, query string
	if req.URL != nil {
		host = req.URL.Host
		path = req.URL.Path
		query = req.URL.Query().Encode()
	}

	cred := CredentialFingerprint(req.Header.Get("Authorization"))

	var buf []byte
	buf = append(buf, method...)
	buf = append(buf, ':')
	buf = append(buf, host...)
	buf = append(buf, path...)
	buf = append(buf, '?')
	buf = append(buf, query...)
	buf = append(buf, '@')
	buf = append(buf, cred...)
	return string(buf)
}
