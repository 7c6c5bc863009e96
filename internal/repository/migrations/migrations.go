// Package migrations embeds the versioned schema migrations, one directory per dialect.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the migrations for PostgreSQL.
func Postgres() fs.FS {
	return sub("postgres")
}

// SQLite returns the migrations for SQLite.
func SQLite() fs.FS {
	return sub("sqlite")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// dir is one of the embedded directories above
		panic(err)
	}
	return f
}
