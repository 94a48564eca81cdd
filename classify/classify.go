// Package classify derives statement-type and table-name hints from raw
// SQL text. It is deliberately regex-based: statement text in a binlog
// is whatever the client sent, and a full SQL parser buys nothing for
// locating the first table reference.
package classify

import (
	"regexp"
	"strings"

	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

var (
	// dbTablePattern locates the first table reference of a recognized
	// DDL or DML statement, honoring optional schema qualification and
	// quoted identifiers (quoted names may contain spaces).
	dbTablePattern = regexp.MustCompile(`(?i)(?:` +
		`CREATE(?:\s+OR\s+REPLACE)?\s+(?:TEMPORARY\s+)?(?:TABLE|VIEW)\s+(?:IF\s+NOT\s+EXISTS\s+)?` +
		`|ALTER\s+(?:TABLE|VIEW)\s+` +
		`|DROP\s+(?:TEMPORARY\s+)?(?:TABLE|VIEW)\s+(?:IF\s+EXISTS\s+)?` +
		`|TRUNCATE\s+(?:TABLE\s+)?` +
		`|RENAME\s+TABLE\s+` +
		`|INSERT\s+(?:IGNORE\s+)?(?:INTO\s+)?` +
		`|REPLACE\s+(?:INTO\s+)?` +
		`|UPDATE\s+(?:IGNORE\s+)?(?:\s+|\s+(?:LOW_PRIORITY)\s+)?` +
		`|DELETE\s+(?:IGNORE\s+)?(?:FROM\s+)?` +
		`)\s*` +
		"(?:([`\"]?[a-zA-Z_][a-zA-Z0-9_$]*[`\"]?)\\.)?" + // optional database/schema
		"(?:[`\"]([a-zA-Z_][a-zA-Z0-9_\\s$]*)[`\"]" + // quoted table name
		`|([a-zA-Z_][a-zA-Z0-9_$]*))` + // bare table name
		`(?:[\s;)]|$)`) // table name must end the token

	// ddlPattern matches the fixed DDL keyword set anchored at the start
	// of the statement.
	ddlPattern = regexp.MustCompile(`(?i)^(CREATE|ALTER|DROP|TRUNCATE|RENAME|GRANT|REVOKE|LOCK|UNLOCK)\b`)

	// tclPattern matches transaction control statements, which are
	// recognized only so they can be excluded from output.
	tclPattern = regexp.MustCompile(`(?i)^(COMMIT|ROLLBACK)\b`)
)

// Classifier 基于正则的语句分类实现
// The zero value is ready to use; New exists for symmetry with the other
// component constructors.
type Classifier struct{}

// New returns a regex-backed classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the statement type plus the database and table of the
// first table reference. Unrecognized text yields a zero Hint; Classify
// never fails.
func (c *Classifier) Classify(query string) types.Hint {
	hint := types.Hint{Type: TypeOf(query)}
	hint.Database, hint.Table = TableOf(query)
	return hint
}

// TypeOf resolves the statement type from the leading keyword:
// the first 6 characters for INSERT/UPDATE/DELETE/SELECT, the first 7
// for REPLACE, and the first 10 matched against the DDL and TCL keyword
// sets. Anything else is unrecognized.
func TypeOf(query string) types.QueryType {
	if len(query) < 6 {
		return ""
	}
	switch types.QueryType(strings.ToUpper(query[:6])) {
	case types.QueryTypeInsert:
		return types.QueryTypeInsert
	case types.QueryTypeUpdate:
		return types.QueryTypeUpdate
	case types.QueryTypeDelete:
		return types.QueryTypeDelete
	case types.QueryTypeSelect:
		return types.QueryTypeSelect
	}
	if len(query) >= 7 && strings.EqualFold(query[:7], "REPLACE") {
		return types.QueryTypeReplace
	}
	head := query
	if len(head) > 10 {
		head = head[:10]
	}
	if ddlPattern.MatchString(head) {
		return types.QueryTypeDDL
	}
	if tclPattern.MatchString(head) {
		return types.QueryTypeTCL
	}
	return ""
}

// TableOf extracts the (database, table) of the first table reference,
// either part empty when absent. The database is only set for
// schema-qualified references.
func TableOf(query string) (database string, table string) {
	match := dbTablePattern.FindStringSubmatch(query)
	if match == nil {
		return "", ""
	}
	database = strings.Trim(match[1], "`\"")
	table = match[2] // quoted table name
	if table == "" {
		table = match[3] // bare table name
	}
	return database, table
}
