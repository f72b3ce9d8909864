package schema

import (
	"strings"
	"testing"
)

func TestToDBName(t *testing.T) {
	maps := map[string]string{
		"":                          "",
		"x":                         "x",
		"X":                         "x",
		"userRestrictions":          "user_restrictions",
		"ThisIsATest":               "this_is_a_test",
		"PFAndESI":                  "pf_and_esi",
		"AbcAndJkl":                 "abc_and_jkl",
		"EmployeeID":                "employee_id",
		"SKU_ID":                    "sku_id",
		"FieldX":                    "field_x",
		"HTTPAndSMTP":               "http_and_smtp",
		"HTTPServerHandlerForURLID": "http_server_handler_for_url_id",
		"UUID":                      "uuid",
		"HTTPURL":                   "http_url",
		"HTTP_URL":                  "http_url",
		"SHA256Hash":                "sha256_hash",
		"SHA256HASH":                "sha256_hash",
		"ThisIsActuallyATestSoWeMayBeAbleToUseThisCodeInGormPackageAlsoIdCanBeUsedAtTheEndAsID": "this_is_actually_a_test_so_we_may_be_able_to_use_this_code_in_gorm_package_also_id_can_be_used_at_the_end_as_id",
	}

	ns := NamingStrategy{}
	for key, value := range maps {
		if ns.toDBName(key) != value {
			t.Errorf("%v toName should equal %v, but got %v", key, value, ns.toDBName(key))
		}
	}
}

func TestNamingStrategy(t *testing.T) {
	ns := NamingStrategy{
		TablePrefix:   "public.",
		SingularTable: true,
		NameReplacer:  strings.NewReplacer("CID", "Cid"),
	}

	if tableName := ns.TableName("Company"); tableName != "public.company" {
		t.Errorf("invalid table name generated, got %v", tableName)
	}

	if columnName := ns.ColumnName("", "CID"); columnName != "cid" {
		t.Errorf("invalid column name generated, got %v", columnName)
	}

	if joinColumnName := ns.JoinColumnName("BillingAddress", "PostalCode"); joinColumnName != "billing_address_postal_code" {
		t.Errorf("invalid join column name generated, got %v", joinColumnName)
	}

	if fkName := ns.ForeignKeyName("public.posts", []string{"author_id"}); fkName != "fk_public_posts_author_id" {
		t.Errorf("invalid foreign key name generated, got %v", fkName)
	}

	if uniqueName := ns.UniqueName("users", "Email"); uniqueName != "uni_users_email" {
		t.Errorf("invalid unique name generated, got %v", uniqueName)
	}

	if idxName := ns.IndexName("users", "CID"); idxName != "idx_users_cid" {
		t.Errorf("invalid index name generated, got %v", idxName)
	}
}

func TestRelationConstraintName(t *testing.T) {
	ns := NamingStrategy{}

	name := ns.RelationConstraintName("people", []string{"passport_tag", "passport_code"})
	if name != "rel_people_passport_code_passport_tag" {
		t.Errorf("relation constraint name should sort its columns, got %v", name)
	}

	columns := []string{"b", "a"}
	if ns.RelationConstraintName("people", columns) != ns.RelationConstraintName("people", []string{"a", "b"}) || columns[0] != "b" {
		t.Errorf("relation constraint name should not depend on column order nor reorder its input")
	}
}

func TestFormatNameWithLongIdentifier(t *testing.T) {
	ns := NamingStrategy{}
	columns := []string{"this_is_a_very_long_column_name_one", "this_is_a_very_long_column_name_two"}

	fkName := ns.ForeignKeyName("a_table_with_a_long_name", columns)
	if len(fkName) != 64 {
		t.Fatalf("foreign key name should be truncated to 64 chars, got %v", fkName)
	}

	if !strings.HasPrefix(fkName, "fk_a_table_with_a_long_name_this_is_a_very_long_column_") {
		t.Errorf("truncated name should keep its prefix, got %v", fkName)
	}

	if fkName != ns.ForeignKeyName("a_table_with_a_long_name", columns) {
		t.Errorf("truncated name should be deterministic")
	}

	if other := ns.ForeignKeyName("a_table_with_a_long_name", columns[:1]); other == fkName {
		t.Errorf("different columns should generate different names")
	}

	short := NamingStrategy{IdentifierMaxLength: 30}
	if name := short.IndexName("accounts", "VeryLongColumnNameForTesting"); len(name) != 30 {
		t.Errorf("index name should be truncated to 30 chars, got %v", name)
	}
}

func TestNoLowerCase(t *testing.T) {
	ns := NamingStrategy{NoLowerCase: true, SingularTable: true}

	if tableName := ns.TableName("UserProfile"); tableName != "UserProfile" {
		t.Errorf("table name should keep its case, got %v", tableName)
	}

	if columnName := ns.ColumnName("", "UserID"); columnName != "UserID" {
		t.Errorf("column name should keep its case, got %v", columnName)
	}

	if joinColumnName := ns.JoinColumnName("Owner", "ID"); joinColumnName != "Owner_ID" {
		t.Errorf("join column name should keep its case, got %v", joinColumnName)
	}
}

func TestEmptyNameReplacement(t *testing.T) {
	ns := NamingStrategy{NameReplacer: strings.NewReplacer("Deleted", "")}

	if columnName := ns.ColumnName("", "Deleted"); columnName != "Deleted" {
		t.Errorf("name replaced with empty string should be kept as is, got %v", columnName)
	}

	if columnName := ns.ColumnName("", "DeletedAt"); columnName != "at" {
		t.Errorf("invalid column name generated, got %v", columnName)
	}
}
