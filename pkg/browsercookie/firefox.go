package browsercookie

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const firefoxQuery = `SELECT host, name, value FROM moz_cookies WHERE host LIKE ?`

func readFirefox(ctx context.Context, path, domain string) ([]Cookie, error) {
	db, cleanup, err := openSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rows, err := db.QueryContext(ctx, firefoxQuery, "%"+domain)
	if err != nil {
		return nil, fmt.Errorf("query moz_cookies: %w", err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		var c Cookie
		if err := rows.Scan(&c.Domain, &c.Name, &c.Value); err != nil {
			return nil, fmt.Errorf("scan moz_cookies: %w", err)
		}
		if matchesDomain(c.Domain, domain) {
			cookies = append(cookies, c)
		}
	}
	return cookies, rows.Err()
}

// openSnapshot copies a cookie database to a temporary directory and opens
// the copy. A running browser holds a lock on the original.
func openSnapshot(path string) (*sql.DB, func(), error) {
	dir, err := os.MkdirTemp("", "browsercookie-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp dir: %w", err)
	}
	removeDir := func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, filepath.Base(path))
	if err := copyFile(path, dst); err != nil {
		removeDir()
		return nil, nil, err
	}
	// The write-ahead log holds recent writes that are not yet checkpointed.
	if fileExists(path + "-wal") {
		_ = copyFile(path+"-wal", dst+"-wal")
	}

	db, err := sql.Open("sqlite3", "file:"+dst+"?mode=ro")
	if err != nil {
		removeDir()
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, func() {
		db.Close()
		removeDir()
	}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
