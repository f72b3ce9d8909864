package schema_test

import (
	"sync"
	"testing"

	"gorm.io/relmeta/schema"
	"gorm.io/relmeta/utils/tests"
)

func parse(t *testing.T, dest interface{}, dialector schema.Dialector) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(dest, &sync.Map{}, schema.NamingStrategy{}, dialector)
	if err != nil {
		t.Fatalf("failed to parse %T, got error %v", dest, err)
	}
	return s
}

func checkSchema(t *testing.T, s *schema.Schema, v schema.Schema, primaryFields []string) {
	t.Run("CheckSchema/"+s.Name, func(t *testing.T) {
		tests.AssertObjEqual(t, s, v, "Name", "Table")

		for idx, field := range primaryFields {
			var found bool
			for _, f := range s.PrimaryFields {
				if f.Name == field {
					found = true
				}
			}

			if idx == 0 {
				if field != s.PrioritizedPrimaryField.Name {
					t.Errorf("schema %v prioritized primary field should be %v, but got %v", s, field, s.PrioritizedPrimaryField.Name)
				}
			}

			if !found {
				t.Errorf("schema %v failed to found primary key: %v", s, field)
			}
		}
	})
}

func checkSchemaField(t *testing.T, s *schema.Schema, f *schema.Field, fc func(*schema.Field)) {
	t.Run("CheckField/"+f.Name, func(t *testing.T) {
		if fc != nil {
			fc(f)
		}

		parsedField, ok := s.FieldsByDBName[f.DBName]
		if !ok {
			parsedField, ok = s.FieldsByName[f.Name]
		}

		if !ok {
			t.Errorf("schema %v failed to look up field with name %v", s, f.Name)
			return
		}

		tests.AssertObjEqual(t, parsedField, f, "Name", "DBName", "DataType", "Length", "Precision", "Scale", "PrimaryKey", "Nullable", "Unique", "Generated", "HasDefaultValue", "DefaultValue", "Comment", "Virtual")

		for _, name := range []string{f.DBName, f.Name} {
			if name != "" {
				if field := s.LookUpField(name); field == nil || (field.Name != name && field.DBName != name) {
					t.Errorf("schema %v failed to look up field with name %v", s, name)
				}
			}
		}

		if f.PrimaryKey {
			var found bool
			for _, primaryField := range s.PrimaryFields {
				if primaryField == parsedField {
					found = true
				}
			}

			if !found {
				t.Errorf("schema %v doesn't include field %v", s, f.Name)
			}
		}
	})
}

type Relation struct {
	Name        string
	Type        schema.RelationshipType
	Schema      string
	FieldSchema string
	References  []Reference
	Constraint  string
	Unique      string
}

type Reference struct {
	PrimaryKey    string
	PrimarySchema string
	ForeignKey    string
	ForeignSchema string
}

func checkSchemaRelation(t *testing.T, s *schema.Schema, relation Relation) {
	t.Run("CheckRelation/"+relation.Name, func(t *testing.T) {
		r, ok := s.Relationships.Relations[relation.Name]
		if !ok {
			t.Errorf("schema %v failed to find relation %v", s, relation.Name)
			return
		}

		if r.Type != relation.Type {
			t.Errorf("schema %v relation %v type should be %v, but got %v", s, relation.Name, relation.Type, r.Type)
		}

		if r.Schema.Name != relation.Schema {
			t.Errorf("schema %v relation's schema expects %v, but got %v", s, relation.Schema, r.Schema.Name)
		}

		if r.FieldSchema.Name != relation.FieldSchema {
			t.Errorf("schema %v field relation's schema expects %v, but got %v", s, relation.FieldSchema, r.FieldSchema.Name)
		}

		if len(r.References) != len(relation.References) {
			t.Fatalf("schema %v relation %v expects %d references, but got %d", s, relation.Name, len(relation.References), len(r.References))
		}

		for idx, ref := range relation.References {
			got := r.References[idx]
			if got.PrimaryKey.Name != ref.PrimaryKey || got.PrimaryKey.Schema.Name != ref.PrimarySchema {
				t.Errorf("schema %v relation %v reference #%d primary key expects %v.%v, but got %v", s, relation.Name, idx, ref.PrimarySchema, ref.PrimaryKey, got.PrimaryKey)
			}

			if got.ForeignKey.DBName != ref.ForeignKey || got.ForeignKey.Schema.Name != ref.ForeignSchema {
				t.Errorf("schema %v relation %v reference #%d foreign key expects %v.%v, but got %v", s, relation.Name, idx, ref.ForeignSchema, ref.ForeignKey, got.ForeignKey.DBName)
			}

			if got.ForeignKey.ReferencedField != got.PrimaryKey {
				t.Errorf("schema %v relation %v reference #%d foreign key should be linked to %v", s, relation.Name, idx, got.PrimaryKey)
			}

			if got.ForeignKey.DataType != got.PrimaryKey.DataType {
				t.Errorf("schema %v relation %v reference #%d foreign key type %v differs from %v", s, relation.Name, idx, got.ForeignKey.DataType, got.PrimaryKey.DataType)
			}
		}

		switch {
		case relation.Constraint == "" && r.Constraint != nil:
			t.Errorf("schema %v relation %v should have no foreign key, but got %v", s, relation.Name, r.Constraint.Name)
		case relation.Constraint != "" && (r.Constraint == nil || r.Constraint.Name != relation.Constraint):
			t.Errorf("schema %v relation %v foreign key should be %v, but got %+v", s, relation.Name, relation.Constraint, r.Constraint)
		}

		switch {
		case relation.Unique == "" && r.Unique != nil:
			t.Errorf("schema %v relation %v should have no unique constraint, but got %v", s, relation.Name, r.Unique.Name)
		case relation.Unique != "" && (r.Unique == nil || r.Unique.Name != relation.Unique):
			t.Errorf("schema %v relation %v unique constraint should be %v, but got %+v", s, relation.Name, relation.Unique, r.Unique)
		}
	})
}

type fakeDialector struct {
	name      string
	uuidTypes bool
}

func (d fakeDialector) Name() string { return d.name }

func (d fakeDialector) NormalizeType(field *schema.Field) string {
	if field.DataType == schema.UUID && !d.uuidTypes {
		return "varchar"
	}
	return string(field.DataType)
}
