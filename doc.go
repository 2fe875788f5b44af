// Package crudo is a code-generation library for database-backed web
// applications. Given a declarative schema description, it generates the
// boilerplate CRUD persistence functions and GraphQL-style resolver
// functions an application would otherwise write by hand.
//
// The library is built from small, composable pieces:
//
//   - query: builds declarative, lazily-evaluated query descriptors
//     (filtering, searching, ordering, pagination) on top of dialect/sql.
//   - errfmt: flattens nested validation-error trees into ordered,
//     human-readable, optionally localized strings.
//   - translate: the pluggable translation contract used by errfmt,
//     with a locale-negotiating catalog implementation.
//   - crud: the thin persistence-access layer the generated functions
//     call, including driver constraint-error translation.
//   - gen and gen/graphql: the code-generation front-end.
//
// This package holds the error taxonomy shared by the runtime pieces.
package crudo
