package object

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"resume-importer/internal/shared/util"
)

// NewKey returns a fresh key under the owner's hashed namespace:
// <sha256(owner)>/<uuid>_<sanitized name>.
func NewKey(ownerID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(util.HashUserKey(ownerID), uuid.NewString()+"_"+name), nil
}

// CheckKey rejects keys that are empty, absolute or climb out of the namespace.
func CheckKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// CleanPrefix trims blanks and slashes from a configured key prefix.
func CleanPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// WithPrefix joins a cleaned prefix and a key.
func WithPrefix(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "/" + key
}

// Sniff detects the content type from the first SniffLen bytes and returns a
// reader that still yields the whole stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, SniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

// OwnerPrefix is the key prefix, ending in "/", under which NewKey places the
// owner's objects once prefix is applied.
func OwnerPrefix(prefix, ownerID string) string {
	return WithPrefix(CleanPrefix(prefix), util.HashUserKey(ownerID)) + "/"
}

// Owns reports whether key is a valid key inside the owner's namespace.
func Owns(prefix, ownerID, key string) bool {
	return CheckKey(key) == nil && strings.HasPrefix(key, OwnerPrefix(prefix, ownerID))
}
