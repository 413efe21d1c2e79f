package graph

import "errors"

var (
	ErrUnknownType         = errors.New("unknown node type")
	ErrUndeclaredRelation  = errors.New("undeclared relation")
	ErrDuplicateNode       = errors.New("duplicate node id")
	ErrDanglingLink        = errors.New("link to unknown node")
	ErrTargetType          = errors.New("link target has wrong type")
	ErrCardinality         = errors.New("multiple values on single-valued relation")
	ErrUnsupportedSnapshot = errors.New("unsupported snapshot format")
)
