package sql

// Field-level predicate helpers. These return selector transforms rather
// than bare predicates, so generated code and custom-query hooks can apply
// them directly to a descriptor.

// FieldEQ returns a transform restricting the field to the given value.
func FieldEQ(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(EQ(name, v))
	}
}

// FieldNEQ returns a transform excluding rows with the given value.
func FieldNEQ(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(NEQ(name, v))
	}
}

// FieldGT returns a transform restricting the field to values greater
// than the given one.
func FieldGT(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(GT(name, v))
	}
}

// FieldGTE returns a transform restricting the field to values greater
// than or equal to the given one.
func FieldGTE(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(GTE(name, v))
	}
}

// FieldLT returns a transform restricting the field to values less than
// the given one.
func FieldLT(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(LT(name, v))
	}
}

// FieldLTE returns a transform restricting the field to values less than
// or equal to the given one.
func FieldLTE(name string, v any) func(*Selector) {
	return func(s *Selector) {
		s.Where(LTE(name, v))
	}
}

// FieldIn returns a transform restricting the field to the given set.
func FieldIn(name string, vs ...any) func(*Selector) {
	return func(s *Selector) {
		s.Where(In(name, vs...))
	}
}

// FieldNotIn returns a transform excluding rows whose field is in the
// given set.
func FieldNotIn(name string, vs ...any) func(*Selector) {
	return func(s *Selector) {
		s.Where(NotIn(name, vs...))
	}
}

// FieldContains returns a substring-match transform.
func FieldContains(name, sub string) func(*Selector) {
	return func(s *Selector) {
		s.Where(Contains(name, sub))
	}
}

// FieldContainsFold returns a case-insensitive substring-match transform.
func FieldContainsFold(name, sub string) func(*Selector) {
	return func(s *Selector) {
		s.Where(ContainsFold(name, sub))
	}
}

// FieldIsNull returns a transform restricting the field to NULL.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) {
		s.Where(IsNull(name))
	}
}

// FieldNotNull returns a transform restricting the field to non-NULL values.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) {
		s.Where(NotNull(name))
	}
}
