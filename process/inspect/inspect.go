// Package inspect reports database state the server relies on: product image
// columns that disagree with each other and the foreign keys in place.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"darlingdetails/pkg/media"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects with the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// ImageRow is the image state of one product.
type ImageRow struct {
	ID           int64
	Name         string
	Image        sql.NullString
	ImageURL     sql.NullString
	ThumbnailURL sql.NullString
}

// Problem describes why row is inconsistent, or returns "" when the three
// columns are all null or all derived from Image by resolver.
func Problem(row ImageRow, resolver media.Resolver) string {
	set := 0
	for _, ns := range []sql.NullString{row.Image, row.ImageURL, row.ThumbnailURL} {
		if ns.Valid && ns.String != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return ""
	case set < 3:
		return "partial image state"
	}
	want := resolver.Resolve(row.Image.String)
	if row.ImageURL.String != want.Main {
		return fmt.Sprintf("imageUrl %q, expected %q", row.ImageURL.String, want.Main)
	}
	if row.ThumbnailURL.String != want.Thumbnail {
		return fmt.Sprintf("thumbnailUrl %q, expected %q", row.ThumbnailURL.String, want.Thumbnail)
	}
	return ""
}

// ImageStates prints every product whose image columns are inconsistent and
// returns how many it found.
func ImageStates(ctx context.Context, db *sql.DB, resolver media.Resolver, w io.Writer) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, image, image_url, thumbnail_url FROM products ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	fmt.Fprintln(w, "Product image state:")
	bad, total := 0, 0
	for rows.Next() {
		var r ImageRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Image, &r.ImageURL, &r.ThumbnailURL); err != nil {
			return bad, fmt.Errorf("scan: %w", err)
		}
		total++
		if p := Problem(r, resolver); p != "" {
			bad++
			fmt.Fprintf(w, "- product %d (%s): %s\n", r.ID, r.Name, p)
		}
	}
	if err := rows.Err(); err != nil {
		return bad, fmt.Errorf("rows err: %w", err)
	}
	fmt.Fprintf(w, "%d of %d products inconsistent\n", bad, total)
	return bad, nil
}

// ForeignKeys prints the foreign key constraints of the public schema.
func ForeignKeys(ctx context.Context, db *sql.DB, w io.Writer) error {
	rows, err := db.QueryContext(ctx, `
		SELECT
		  con.conname AS constraint_name,
		  rel.relname AS table_name,
		  array_to_string(array_agg(att.attname ORDER BY u.ord), ',') AS src_columns,
		  confrel.relname AS referenced_table,
		  pg_get_constraintdef(con.oid) AS definition
		FROM pg_constraint con
		JOIN pg_class rel ON rel.oid = con.conrelid
		JOIN pg_namespace ns ON ns.oid = rel.relnamespace
		JOIN pg_class confrel ON confrel.oid = con.confrelid
		JOIN unnest(con.conkey) WITH ORDINALITY AS u(attnum, ord) ON true
		JOIN pg_attribute att ON att.attrelid = con.conrelid AND att.attnum = u.attnum
		WHERE con.contype = 'f' AND ns.nspname = 'public'
		GROUP BY con.oid, con.conname, rel.relname, confrel.relname
		ORDER BY rel.relname, constraint_name;
	`)
	if err != nil {
		return fmt.Errorf("query constraints: %w", err)
	}
	defer rows.Close()

	fmt.Fprintln(w, "Foreign keys:")
	for rows.Next() {
		var cname, table, reftable, def string
		var srcCols sql.NullString
		if err := rows.Scan(&cname, &table, &srcCols, &reftable, &def); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		fmt.Fprintf(w, "- %s: %s(%s) -> %s\n    def: %s\n", cname, table, srcCols.String, reftable, def)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows err: %w", err)
	}
	return nil
}
