package flix

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// signTimestampLayout is the timestamp form embedded in the canonical string:
// ISO-8601 seconds precision with a literal Z suffix.
const signTimestampLayout = "2006-01-02T15:04:05"

// sign produces the FNAUTH authorization token for a single request.
//
// The canonical string is, line by line:
//
//	METHOD
//	<md5 hex of content>      (omitted together with the next line when empty)
//	<content type>
//	<timestamp, seconds precision, Z suffix>
//	<url path, query stripped>
//
// The signature is base64(HMAC-SHA256(secret, canonical)). The function is
// pure; it performs no I/O and no clock reads.
func sign(accessKeyID, secret, method, rawURL string, content any, contentType string, ts time.Time) (string, error) {
	if secret == "" {
		return "", ErrInvalidCredential
	}

	canonical, err := canonicalString(method, rawURL, content, contentType, ts)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return "FNAUTH " + accessKeyID + ":" + sig, nil
}

func canonicalString(method, rawURL string, content any, contentType string, ts time.Time) (string, error) {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteString("\n")

	digest, err := contentDigest(content)
	if err != nil {
		return "", err
	}
	if digest != "" {
		b.WriteString(digest)
		b.WriteString("\n")
		b.WriteString(contentType)
		b.WriteString("\n")
	} else {
		b.WriteString("\n\n")
	}

	b.WriteString(ts.UTC().Format(signTimestampLayout))
	b.WriteString("Z\n")

	path, _, _ := strings.Cut(rawURL, "?")
	b.WriteString(path)

	return b.String(), nil
}

// contentDigest hashes the request content for the canonical string. The
// per-type treatment is part of the wire protocol and must not be unified:
// strings hash their raw bytes, byte slices are hex-encoded before hashing,
// and anything else is serialized as compact JSON and hashed.
func contentDigest(content any) (string, error) {
	switch c := content.(type) {
	case nil:
		return "", nil
	case string:
		if c == "" {
			return "", nil
		}
		return md5Hex([]byte(c)), nil
	case []byte:
		if len(c) == 0 {
			return "", nil
		}
		return md5Hex([]byte(hex.EncodeToString(c))), nil
	default:
		encoded, err := json.Marshal(content)
		if err != nil {
			return "", fmt.Errorf("encode content for signing: %w", err)
		}
		return md5Hex(encoded), nil
	}
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
