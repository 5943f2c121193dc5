package browsercookie

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/crypto/pbkdf2"
)

const (
	chromiumQuery    = `SELECT host_key, name, value, encrypted_value FROM cookies WHERE host_key LIKE ?`
	chromiumMetaSQL  = `SELECT value FROM meta WHERE key = 'version'`
	v10Prefix        = "v10"
	v11Prefix        = "v11"
	hashPrefixLen    = 32
	hashPrefixSchema = 24
)

// Without a keyring, Chromium on Linux derives its cookie key from a fixed
// password.
var v10Key = pbkdf2.Key([]byte("peanuts"), []byte("saltysalt"), 1, aes.BlockSize, sha1.New)

var (
	errKeyringEncrypted = errors.New("cookie encrypted with a keyring key")
	errBadPadding       = errors.New("invalid padding")
)

func (r *Reader) readChromium(ctx context.Context, path, domain string) ([]Cookie, error) {
	db, cleanup, err := openSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	schema := metaVersion(ctx, db)

	rows, err := db.QueryContext(ctx, chromiumQuery, "%"+domain)
	if err != nil {
		return nil, fmt.Errorf("query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		var (
			c         Cookie
			encrypted []byte
		)
		if err := rows.Scan(&c.Domain, &c.Name, &c.Value, &encrypted); err != nil {
			return nil, fmt.Errorf("scan cookies: %w", err)
		}
		if !matchesDomain(c.Domain, domain) {
			continue
		}
		if c.Value == "" && len(encrypted) > 0 {
			value, err := decryptValue(encrypted, schema)
			if err != nil {
				r.logger.Debug("cannot decrypt cookie", "path", path, "name", c.Name, "error", err)
				continue
			}
			c.Value = value
		}
		if c.Value != "" {
			cookies = append(cookies, c)
		}
	}
	return cookies, rows.Err()
}

func metaVersion(ctx context.Context, db *sql.DB) int {
	var raw string
	if err := db.QueryRowContext(ctx, chromiumMetaSQL).Scan(&raw); err != nil {
		return 0
	}
	v, _ := strconv.Atoi(raw)
	return v
}

// decryptValue decrypts a v10 encrypted_value. Databases at schema 24 and
// later prefix the plaintext with a SHA-256 of the host.
func decryptValue(encrypted []byte, schema int) (string, error) {
	switch {
	case bytes.HasPrefix(encrypted, []byte(v11Prefix)):
		return "", errKeyringEncrypted
	case !bytes.HasPrefix(encrypted, []byte(v10Prefix)):
		return "", fmt.Errorf("unknown cookie encryption prefix %q", encrypted[:min(3, len(encrypted))])
	}

	ciphertext := encrypted[len(v10Prefix):]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}

	block, err := aes.NewCipher(v10Key)
	if err != nil {
		return "", err
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, chromiumIV()).CryptBlocks(plain, ciphertext)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return "", err
	}
	if schema >= hashPrefixSchema && len(plain) >= hashPrefixLen {
		plain = plain[hashPrefixLen:]
	}
	return string(plain), nil
}

func chromiumIV() []byte {
	return bytes.Repeat([]byte{' '}, aes.BlockSize)
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errBadPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
