package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("malformed download token")
	ErrBadSignature   = errors.New("invalid download token signature")
	ErrTokenExpired   = errors.New("download token expired")
)

// SignedObject is the payload carried by a download token.
type SignedObject struct {
	ExportID  string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues and verifies HMAC-signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Sign returns a token of the form id.expiry.path.signature.
func (s *SignedURLSigner) Sign(exportID, relPath string) (string, time.Time, error) {
	if exportID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("export id and path required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	signature := s.sign(exportID, expiry, encodedPath)
	return strings.Join([]string{exportID, expiry, encodedPath, signature}, "."), expiresAt, nil
}

// Verify validates a token. allowExpired skips the expiry check so cleanup
// routines can still resolve the stored path.
func (s *SignedURLSigner) Verify(token string, allowExpired bool) (*SignedObject, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return nil, ErrMalformedToken
	}
	exportID, expiry, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(exportID, expiry, encodedPath)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}

	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return nil, ErrMalformedToken
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return nil, ErrMalformedToken
	}

	obj := &SignedObject{ExportID: exportID, Path: string(rawPath), ExpiresAt: time.Unix(unix, 0)}
	if !allowExpired && !s.now().Before(obj.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return obj, nil
}

func (s *SignedURLSigner) sign(exportID, expiry, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exportID + "|" + expiry + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
