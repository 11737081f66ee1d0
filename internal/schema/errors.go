package schema

import "errors"

// Model construction errors
var (
	ErrEmptyEntityName         = errors.New("entity name cannot be empty")
	ErrDuplicateEntity         = errors.New("duplicate entity")
	ErrDuplicateColumn         = errors.New("duplicate column")
	ErrUnknownPrimaryKeyColumn = errors.New("primary key references unknown column")
	ErrDanglingForeignKey      = errors.New("foreign key references unknown table or column")
)

// DDL errors
var (
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	ErrReferenceCycle     = errors.New("foreign key cycle between entities")
)

// Lookup errors
var (
	ErrEntityNotFound = errors.New("entity not found")
)
