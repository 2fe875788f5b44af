package crud

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/crudo-dev/crudo"
	"github.com/crudo-dev/crudo/errfmt"
)

// Validation message grammar for translated constraint violations.
const (
	msgTaken        = "has already been taken"
	msgDoesNotExist = "does not exist"
	msgBlank        = "can't be blank"
)

// Postgres error codes handled here.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// MySQL error numbers handled here.
const (
	myDuplicateEntry    = 1062
	myNoReferencedRow   = 1452
	myColumnCannotBeNil = 1048
)

// TranslateConstraint converts a driver-level constraint violation into a
// validation tree carried by an errfmt.TreeError, so it renders as a
// field-level message ("email has already been taken") instead of a raw
// driver string. Errors that are not recognized constraint violations are
// returned unchanged.
func TranslateConstraint(err error, t Table) error {
	if err == nil {
		return nil
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		switch string(pqe.Code) {
		case pgUniqueViolation:
			return treeError(constraintField(pqe.Constraint, t), msgTaken, err)
		case pgForeignKeyViolation:
			return treeError(constraintField(pqe.Constraint, t), msgDoesNotExist, err)
		case pgNotNullViolation:
			return treeError(pqe.Column, msgBlank, err)
		}
		return err
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) {
		switch mye.Number {
		case myDuplicateEntry:
			if key, ok := between(mye.Message, "for key '", "'"); ok {
				return treeError(constraintField(key, t), msgTaken, err)
			}
			return crudo.NewConstraintError(mye.Message, err)
		case myNoReferencedRow:
			if col, ok := between(mye.Message, "FOREIGN KEY (`", "`)"); ok {
				return treeError(col, msgDoesNotExist, err)
			}
			return crudo.NewConstraintError(mye.Message, err)
		case myColumnCannotBeNil:
			if col, ok := between(mye.Message, "Column '", "'"); ok {
				return treeError(col, msgBlank, err)
			}
			return crudo.NewConstraintError(mye.Message, err)
		}
		return err
	}
	// SQLite reports constraints through the error text only.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: "):
		return treeError(sqliteColumn(msg), msgTaken, err)
	case strings.Contains(msg, "NOT NULL constraint failed: "):
		return treeError(sqliteColumn(msg), msgBlank, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return treeError(t.ID, msgDoesNotExist, err)
	}
	return err
}

func treeError(field, msg string, cause error) error {
	return &errfmt.TreeError{
		Tree:  errfmt.NewTree().Add(field, errfmt.Msg(msg)),
		Cause: cause,
	}
}

// constraintField derives a field name from an index or constraint name,
// following the common "<table>_<field>_key" naming scheme.
func constraintField(name string, t Table) string {
	field := name
	// MySQL 8 qualifies key names with the table: "users.users_email_key".
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	field = strings.TrimPrefix(field, t.Name+"_")
	for _, suffix := range []string{"_key", "_fkey", "_idx", "_index"} {
		field = strings.TrimSuffix(field, suffix)
	}
	if field == "" {
		return name
	}
	return field
}

// sqliteColumn extracts the column from messages of the form
// "... constraint failed: table.column".
func sqliteColumn(msg string) string {
	i := strings.LastIndex(msg, ": ")
	if i < 0 {
		return msg
	}
	col := msg[i+2:]
	if j := strings.LastIndex(col, "."); j >= 0 {
		col = col[j+1:]
	}
	return col
}

func between(s, start, end string) (string, bool) {
	i := strings.Index(s, start)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(start):]
	j := strings.Index(rest, end)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}
