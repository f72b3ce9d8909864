package schema_test

import (
	"testing"

	"gorm.io/relmeta/schema"
	"gorm.io/relmeta/utils/tests"
)

type UserUnique struct {
	ID    uint
	Name  string `gorm:"unique"`
	Email string `gorm:"unique;size:255"`
	Nick  string
}

func TestParseUniqueConstraints(t *testing.T) {
	user := parse(t, &UserUnique{}, nil)

	constraints := user.ParseUniqueConstraints()
	if len(constraints) != 2 {
		t.Fatalf("expected 2 unique constraints, got %d", len(constraints))
	}

	for _, name := range []string{"name", "email"} {
		uni, ok := constraints["uni_user_uniques_"+name]
		if !ok {
			t.Errorf("unique constraint of %v should be parsed", name)
			continue
		}

		tests.AssertEqual(t, uni.ColumnNames(), []string{name})
		if uni.Schema != user {
			t.Errorf("unique constraint should belong to its schema")
		}
	}

	if len(user.UniqueConstraints) != 2 || user.UniqueConstraints[0].Name != "uni_user_uniques_email" {
		t.Errorf("unique constraints should be recorded sorted by name, got %+v", user.UniqueConstraints)
	}
}

func TestConstraintBuild(t *testing.T) {
	namer := schema.NamingStrategy{}
	account := schema.NewSchema("Account", "", namer, nil)
	code := account.AddField(&schema.Field{Name: "Code", DataType: schema.String, PrimaryKey: true})

	invoice := schema.NewSchema("Invoice", "", namer, nil)
	accountCode := invoice.AddField(&schema.Field{Name: "AccountCode", DataType: schema.String})

	constraint := &schema.Constraint{
		Schema:          invoice,
		ForeignKeys:     []*schema.Field{accountCode},
		ReferenceSchema: account,
		References:      []*schema.Field{code},
		OnDelete:        " cascade ",
		Deferrable:      "initially deferred",
	}
	constraint.Build(namer)

	tests.AssertObjEqual(t, constraint, &schema.Constraint{
		Name:       "fk_invoices_account_code",
		OnDelete:   "CASCADE",
		OnUpdate:   "NO ACTION",
		Deferrable: schema.InitiallyDeferred,
	}, "Name", "OnDelete", "OnUpdate", "Deferrable")

	tests.AssertEqual(t, constraint.ColumnNames(), []string{"account_code"})
	tests.AssertEqual(t, constraint.ReferencedColumnNames(), []string{"code"})

	named := &schema.Constraint{Name: "fk_custom", Schema: invoice, ForeignKeys: []*schema.Field{accountCode}}
	named.Build(namer)
	if named.GetName() != "fk_custom" {
		t.Errorf("given constraint name should be kept, got %v", named.GetName())
	}
}

func TestUniqueConstraintBuild(t *testing.T) {
	namer := schema.NamingStrategy{}
	person := schema.NewSchema("Person", "", namer, nil)
	code := person.AddField(&schema.Field{Name: "PassportCode", DataType: schema.String})
	tag := person.AddField(&schema.Field{Name: "PassportTag", DataType: schema.String})

	uni := &schema.UniqueConstraint{Schema: person, Fields: []*schema.Field{code, tag}}
	uni.Build(namer)

	if uni.GetName() != "uni_people_passport_code_passport_tag" {
		t.Errorf("unique constraint should be named by the namer, got %v", uni.GetName())
	}

	idx := uni.Index()
	tests.AssertObjEqual(t, idx, &schema.Index{Name: "uni_people_passport_code_passport_tag", Class: "UNIQUE"}, "Name", "Class")
	tests.AssertEqual(t, idx.ColumnNames(), []string{"passport_code", "passport_tag"})
}
