package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	ierr "github.com/solarinvoice/invoicer/internal/errors"
)

const shareTokenBytes = 32

// newShareToken returns an unguessable url safe token for public invoice links
func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", ierr.WithError(err).
			WithHint("Could not generate a share link").
			Mark(ierr.ErrSystem)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ShareURL is the public link for token under baseURL
func ShareURL(baseURL, token string) string {
	if token == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/v1/view/" + token
}
