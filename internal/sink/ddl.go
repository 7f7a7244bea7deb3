package sink

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// Dialect is a SQL flavour for DDL generation.
type Dialect string

const (
	DialectSQLite   Dialect = KindSQLite
	DialectPostgres Dialect = KindPostgres
	DialectMSSQL    Dialect = KindMSSQL
)

// CreateTableSQL returns an idempotent CREATE TABLE statement for the output
// schema.
func CreateTableSQL(d Dialect, ref config.TableRef) (string, error) {
	cols := make([]string, len(models.OutputSchema))
	for i, c := range models.OutputSchema {
		typ, err := columnType(d, c.Type)
		if err != nil {
			return "", err
		}
		cols[i] = quoteIdent(d, c.Name) + " " + typ
	}
	body := strings.Join(cols, ", ")

	switch d {
	case DialectSQLite:
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(d, ref.Table), body), nil
	case DialectPostgres:
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgTable(ref).Sanitize(), body), nil
	case DialectMSSQL:
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
			strings.ReplaceAll(ref.Qualified(), "'", "''"), msFQN(ref), body), nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", d)
	}
}

func columnType(d Dialect, t models.ColumnType) (string, error) {
	switch t {
	case models.TypeString:
		switch d {
		case DialectMSSQL:
			return "NVARCHAR(255)", nil
		default:
			return "TEXT", nil
		}
	case models.TypeInteger:
		if d == DialectSQLite {
			return "INTEGER", nil
		}
		return "BIGINT", nil
	}
	return "", fmt.Errorf("unsupported column type %s", t)
}

func quoteIdent(d Dialect, id string) string {
	switch d {
	case DialectMSSQL:
		return msIdent(id)
	case DialectPostgres:
		return pgx.Identifier{id}.Sanitize()
	default:
		return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
	}
}

func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

func msFQN(ref config.TableRef) string {
	if ref.Dataset == "" {
		return msIdent(ref.Table)
	}
	return msIdent(ref.Dataset) + "." + msIdent(ref.Table)
}

func pgTable(ref config.TableRef) pgx.Identifier {
	if ref.Dataset == "" {
		return pgx.Identifier{ref.Table}
	}
	return pgx.Identifier{ref.Dataset, ref.Table}
}
