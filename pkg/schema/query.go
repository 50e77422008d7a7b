package schema

// Pure structural queries over a schema. These are the substrate every
// stateful component builds on; they never mutate their input and carry no
// caching, since authored schemas are small.

// IsMultiStage reports whether the schema declares more than one stage.
// Legacy single-field documents normalise into one stage at parse time, so
// any parsed schema has at least one.
func IsMultiStage(s *Schema) bool {
	return s != nil && len(s.Stages) > 1
}

// StageCount returns the number of stages, treating a nil schema as empty.
func StageCount(s *Schema) int {
	if s == nil {
		return 0
	}
	return len(s.Stages)
}

// FieldsFor returns the field sequence of one stage. Out-of-range indices
// yield nil.
func FieldsFor(s *Schema, stage int) []Field {
	if s == nil || stage < 0 || stage >= len(s.Stages) {
		return nil
	}
	return s.Stages[stage].Fields
}

// Fields returns the declared fields of every stage, flattened in document
// order.
func Fields(s *Schema) []Field {
	if s == nil {
		return nil
	}
	var out []Field
	for _, stage := range s.Stages {
		out = append(out, stage.Fields...)
	}
	return out
}

// StageIndexOfField locates the stage declaring the named field, or -1.
func StageIndexOfField(s *Schema, name string) int {
	if s == nil || name == "" {
		return -1
	}
	for si, stage := range s.Stages {
		for _, field := range stage.Fields {
			if field.Name == name {
				return si
			}
		}
	}
	return -1
}

// FieldByName locates a field declaration anywhere in the schema.
func FieldByName(s *Schema, name string) (Field, bool) {
	if s == nil || name == "" {
		return Field{}, false
	}
	for _, stage := range s.Stages {
		for _, field := range stage.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return Field{}, false
}

// LastDataStage returns the index of the last non-summary stage, or -1 when
// every stage is a summary.
func LastDataStage(s *Schema) int {
	if s == nil {
		return -1
	}
	for i := len(s.Stages) - 1; i >= 0; i-- {
		if !s.Stages[i].IsSummary() {
			return i
		}
	}
	return -1
}

// SummaryStage returns the index of the first summary stage, or -1.
func SummaryStage(s *Schema) int {
	if s == nil {
		return -1
	}
	for i, stage := range s.Stages {
		if stage.IsSummary() {
			return i
		}
	}
	return -1
}
