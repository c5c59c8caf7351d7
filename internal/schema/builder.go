// Package schema builds the textual schema document the language model is
// grounded on. The builder walks the database catalog table by table,
// strictly sequentially, and renders one deterministic plain-text document
// covering every base table.
package schema

import (
	"context"
	"strings"
	"time"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/errs"
	"github.com/askdb/askdb/internal/logger"
)

// documentTitle is the single leading line of every schema document.
const documentTitle = "Database schema:"

// Catalog queries. Table enumeration follows pg_class.oid, i.e. creation
// order — the document must reproduce the catalog's own enumeration order,
// not an alphabetical one. All identifiers reach the catalog as parameters.
const (
	queryTables = `
		SELECT c.relname AS table_name,
		       obj_description(c.oid, 'pg_class') AS description
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r'
		  AND n.nspname = $1
		ORDER BY c.oid`

	queryColumns = `
		SELECT a.attname AS column_name,
		       pg_catalog.format_type(a.atttypid, a.atttypmod) AS data_type,
		       NOT a.attnotnull AS is_nullable,
		       pg_catalog.pg_get_expr(d.adbin, d.adrelid) AS column_default,
		       pg_catalog.col_description(a.attrelid, a.attnum) AS description
		FROM pg_catalog.pg_attribute a
		JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_catalog.pg_attrdef d
		  ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE n.nspname = $1
		  AND c.relname = $2
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		ORDER BY a.attnum`

	queryPrimaryKeys = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = $1
		  AND tc.table_name      = $2
		ORDER BY kcu.ordinal_position`

	queryForeignKeys = `
		SELECT kcu.column_name,
		       ccu.table_name  AS ref_table,
		       ccu.column_name AS ref_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema    = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema    = $1
		  AND tc.table_name      = $2
		ORDER BY kcu.ordinal_position`

	// Non-PK index rows, one per index column, ordered by index oid then
	// key ordinal. Grouping by first-seen index name happens in Go.
	queryIndexes = `
		SELECT i.relname      AS index_name,
		       a.attname      AS column_name,
		       ix.indisunique AS is_unique
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_catalog.pg_attribute a
		  ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1
		  AND t.relname = $2
		  AND NOT ix.indisprimary
		ORDER BY ix.indexrelid, k.ord`
)

// Builder assembles the schema document from a database.Source.
// Build issues its catalog queries one table at a time, never concurrently,
// so a single shared connection handle is enough.
type Builder struct {
	src        database.Source
	schemaName string
	log        *logger.Logger
}

// NewBuilder returns a Builder introspecting the given schema
// (usually "public").
func NewBuilder(src database.Source, schemaName string, log *logger.Logger) *Builder {
	if schemaName == "" {
		schemaName = "public"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{src: src, schemaName: schemaName, log: log}
}

// Build walks the catalog and returns the full schema document.
// Any catalog query failure aborts the build with a metadata error.
func (b *Builder) Build(ctx context.Context) (string, error) {
	start := time.Now()

	tables, err := b.fetchTables(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(documentTitle)
	sb.WriteString("\n")

	for _, t := range tables {
		if err := b.fillTable(ctx, t); err != nil {
			return "", err
		}
		sb.WriteString("\n")
		renderTable(&sb, t)
	}

	b.log.With().
		Int("tables", len(tables)).
		Dur("elapsed", time.Since(start)).
		Logger().
		Debug("schema document built")

	return sb.String(), nil
}

// fillTable loads columns, keys and indexes for one table, in fixed order.
func (b *Builder) fillTable(ctx context.Context, t *Table) error {
	var err error
	if t.Columns, err = b.fetchColumns(ctx, t.Name); err != nil {
		return err
	}
	if t.PrimaryKeys, err = b.fetchPrimaryKeys(ctx, t.Name); err != nil {
		return err
	}
	if t.ForeignKeys, err = b.fetchForeignKeys(ctx, t.Name); err != nil {
		return err
	}
	if t.Indexes, err = b.fetchIndexes(ctx, t.Name); err != nil {
		return err
	}
	return nil
}

func (b *Builder) fetchTables(ctx context.Context) ([]*Table, error) {
	recs, err := b.src.Query(ctx, queryTables, b.schemaName)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata, "failed to list tables", err)
	}

	tables := make([]*Table, 0, len(recs))
	for _, rec := range recs {
		tables = append(tables, &Table{
			Name:        stringField(rec, "table_name"),
			Description: optStringField(rec, "description"),
		})
	}
	return tables, nil
}

func (b *Builder) fetchColumns(ctx context.Context, table string) ([]Column, error) {
	recs, err := b.src.Query(ctx, queryColumns, b.schemaName, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata, "failed to fetch columns of "+table, err)
	}

	cols := make([]Column, 0, len(recs))
	for _, rec := range recs {
		cols = append(cols, Column{
			Name:        stringField(rec, "column_name"),
			DataType:    stringField(rec, "data_type"),
			Nullable:    boolField(rec, "is_nullable"),
			Default:     optStringField(rec, "column_default"),
			Description: optStringField(rec, "description"),
		})
	}
	return cols, nil
}

func (b *Builder) fetchPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	recs, err := b.src.Query(ctx, queryPrimaryKeys, b.schemaName, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata, "failed to fetch primary keys of "+table, err)
	}

	var pks []string
	for _, rec := range recs {
		pks = append(pks, stringField(rec, "column_name"))
	}
	return pks, nil
}

func (b *Builder) fetchForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	recs, err := b.src.Query(ctx, queryForeignKeys, b.schemaName, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata, "failed to fetch foreign keys of "+table, err)
	}

	var fks []ForeignKey
	for _, rec := range recs {
		fks = append(fks, ForeignKey{
			Column:    stringField(rec, "column_name"),
			RefTable:  stringField(rec, "ref_table"),
			RefColumn: stringField(rec, "ref_column"),
		})
	}
	return fks, nil
}

// fetchIndexes groups the per-column index rows by index name, keeping the
// first-seen order of names and the key-ordinal order of columns within
// each index. Every row of one index carries the same uniqueness flag.
func (b *Builder) fetchIndexes(ctx context.Context, table string) ([]Index, error) {
	recs, err := b.src.Query(ctx, queryIndexes, b.schemaName, table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata, "failed to fetch indexes of "+table, err)
	}

	var indexes []Index
	byName := make(map[string]int)
	for _, rec := range recs {
		name := stringField(rec, "index_name")
		i, ok := byName[name]
		if !ok {
			i = len(indexes)
			byName[name] = i
			indexes = append(indexes, Index{
				Name:   name,
				Unique: boolField(rec, "is_unique"),
			})
		}
		indexes[i].Columns = append(indexes[i].Columns, stringField(rec, "column_name"))
	}
	return indexes, nil
}
