package manifest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/relmeta/dialect"
	"gorm.io/relmeta/manifest"
	"gorm.io/relmeta/schema"
)

func build(t *testing.T, m *manifest.Manifest, dialector schema.Dialector) map[string]*schema.Schema {
	t.Helper()
	schemas, err := m.Build(schema.NamingStrategy{}, dialector)
	require.NoError(t, err)

	byName := map[string]*schema.Schema{}
	for _, s := range schemas {
		require.NoError(t, s.ResolveRelationships())
		byName[s.Name] = s
	}
	return byName
}

func TestLoad(t *testing.T) {
	m, err := manifest.Load("testdata/shop.yaml")
	require.NoError(t, err)
	require.Len(t, m.Entities, 6)

	schemas := build(t, m, dialect.MySQL{})

	customer := schemas["Customer"]
	assert.Equal(t, "shop_customers", customer.Table)
	tier := customer.LookUpField("tier")
	require.NotNil(t, tier)
	assert.Equal(t, []string{"gold", "silver"}, tier.Enum)
	assert.Equal(t, "tier", tier.EnumName)

	order := schemas["Order"]
	assert.Equal(t, "orders", order.Table)
	assert.Len(t, order.Fields, 6)

	customerID := order.LookUpField("customer_id")
	require.NotNil(t, customerID)
	assert.Equal(t, schema.UUID, customerID.DataType)
	assert.Equal(t, "kept", customerID.Comment)
	assert.False(t, customerID.Virtual, "declared columns are reused in place")
	assert.Equal(t, customer.PrioritizedPrimaryField, customerID.ReferencedField)

	customerRel := order.Relationships.Relations["Customer"]
	require.NotNil(t, customerRel.Constraint)
	assert.Equal(t, "fk_orders_customer_id", customerRel.Constraint.Name)
	assert.Equal(t, "CASCADE", customerRel.Constraint.OnDelete)

	invoiceRel := order.Relationships.Relations["Invoice"]
	assert.Equal(t, schema.OneToOne, invoiceRel.Type)
	require.NotNil(t, invoiceRel.Constraint)
	assert.Equal(t, "fk_order_invoice", invoiceRel.Constraint.Name)
	assert.Equal(t, []string{"invoice_number", "invoice_year"}, invoiceRel.Constraint.ColumnNames())
	assert.Equal(t, []string{"number", "year"}, invoiceRel.Constraint.ReferencedColumnNames())

	number := order.LookUpField("invoice_number")
	require.NotNil(t, number)
	assert.True(t, number.Unsigned)
	assert.Equal(t, 10, number.Width)
	assert.False(t, number.Nullable)

	require.NotNil(t, invoiceRel.Unique)
	assert.Empty(t, order.UniqueConstraints, "mysql records unique indexes instead")
	require.Len(t, order.Indexes, 1)
	assert.Equal(t, "rel_orders_invoice_number_invoice_year", order.Indexes[0].Name)
	assert.Equal(t, "UNIQUE", order.Indexes[0].Class)

	countryRel := order.Relationships.Relations["Country"]
	require.NotNil(t, countryRel.Embedded)
	assert.Equal(t, "Shipping", countryRel.Embedded.Name)

	countryCode := order.LookUpField("shipping_country_code")
	require.NotNil(t, countryCode)
	assert.Equal(t, "country_code", countryCode.DBNameWithoutPrefix())
	assert.Equal(t, "2", countryCode.Length)
	assert.Equal(t, "ascii_bin", countryCode.Collation)
	assert.Equal(t, "ascii", countryCode.Charset)
	assert.Contains(t, countryRel.Embedded.Fields, countryCode)
	assert.Equal(t, "fk_orders_shipping_country_code", countryRel.Constraint.Name)

	content, article := schemas["Content"], schemas["Article"]
	assert.Equal(t, content, article.Parent)
	assert.Equal(t, "contents", article.Table)
	assert.Same(t, content.LookUpField("kind"), article.LookUpField("kind"))
	require.NotNil(t, article.PrioritizedPrimaryField)
	assert.Equal(t, "ID", article.PrioritizedPrimaryField.Name)
	assert.Equal(t, schema.DataType("TEXT"), article.LookUpField("body").DataType)
	assert.True(t, article.LookUpField("body").Nullable)
	assert.Equal(t, "article", content.LookUpField("kind").DefaultValue)
}

func TestBuildDefaults(t *testing.T) {
	m, err := manifest.Parse([]byte(`
entities:
  - name: User
    columns:
      - {name: ID, type: uuid, primary_key: true, nullable: true, generated: UUID}
  - name: Profile
    relations:
      - name: User
        type: one2one
        target: User
        primary: true
        join_columns: [{}]
  - name: Session
    relations:
      - {name: User, target: User, create_foreign_key_constraints: false}
      - {name: Backup, type: one-to-one, target: User}
`))
	require.NoError(t, err)

	schemas := build(t, m, dialect.MySQL{Flavor: "mariadb", ServerVersion: "10.5"})

	id := schemas["User"].LookUpField("id")
	assert.False(t, id.Nullable, "primary keys are never nullable")
	assert.Equal(t, schema.GenerateUUID, id.Generated)

	profile := schemas["Profile"]
	userID := profile.LookUpField("user_id")
	require.NotNil(t, userID)
	assert.True(t, userID.PrimaryKey)
	assert.False(t, userID.Nullable)
	assert.Equal(t, "36", userID.Length)
	assert.Nil(t, profile.Relationships.Relations["User"].Unique)
	require.Len(t, profile.ForeignKeys, 1)
	assert.Equal(t, "fk_profiles_user_id", profile.ForeignKeys[0].Name)

	session := schemas["Session"]
	assert.NotNil(t, session.LookUpField("user_id"))
	assert.Nil(t, session.Relationships.Relations["User"].Constraint)
	assert.Empty(t, session.Relationships.Relations["Backup"].References, "one-to-one without join columns is the inverse side")
	assert.Empty(t, session.ForeignKeys)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]struct {
		yaml string
		err  error
	}{
		"duplicate": {`
entities:
  - {name: User}
  - {name: User}
`, manifest.ErrDuplicateEntity},
		"unknown target": {`
entities:
  - name: Post
    relations: [{name: Author, target: Author}]
`, manifest.ErrUnknownEntity},
		"unknown parent": {`
entities:
  - {name: Article, parent: Content}
`, manifest.ErrUnknownEntity},
		"relation type": {`
entities:
  - {name: Tag}
  - name: Post
    relations: [{name: Tags, type: many-to-many, target: Tag}]
`, manifest.ErrInvalidRelationType},
		"column type": {`
entities:
  - name: Post
    columns: [{name: Title}]
`, manifest.ErrInvalidColumn},
		"generation": {`
entities:
  - name: Post
    columns: [{name: ID, type: int, generated: sequence}]
`, manifest.ErrInvalidColumn},
		"entity name": {`
entities:
  - {table: posts}
`, manifest.ErrInvalidEntity},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := manifest.Parse([]byte(c.yaml))
			require.NoError(t, err)

			_, err = m.Build(nil, nil)
			assert.ErrorIs(t, err, c.err)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := manifest.Parse([]byte("entities:\n  - name: User\n    colums: []\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = manifest.Parse([]byte("entities:\n  - name: User\n    columns:\n      - {name: Role, type: string, enum: {a: b}}\n"))
	assert.Error(t, err)

	_, err = manifest.Load("testdata/missing.yaml")
	assert.Error(t, err)

	m, err := manifest.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, m.Entities)
}

func TestStringList(t *testing.T) {
	m, err := manifest.Parse([]byte(`
entities:
  - name: Post
    columns:
      - {name: Status, type: string, enum: [draft, published]}
      - {name: Kind, type: string, enum: "a, b,,c"}
`))
	require.NoError(t, err)

	assert.Equal(t, manifest.StringList{"draft", "published"}, m.Entities[0].Columns[0].Enum)
	assert.Equal(t, manifest.StringList{"a", "b", "c"}, m.Entities[0].Columns[1].Enum)
}

func TestLoadFiles(t *testing.T) {
	m, err := manifest.LoadFiles(context.Background(), "testdata/shop.yaml", "testdata/catalog.yaml")
	require.NoError(t, err)
	require.Len(t, m.Entities, 8)
	assert.Equal(t, "Order", m.Entities[0].Name)
	assert.Equal(t, "LineItem", m.Entities[7].Name)

	schemas := build(t, m, nil)
	sku := schemas["LineItem"].LookUpField("product_sku")
	require.NotNil(t, sku)
	assert.Equal(t, "32", sku.Length)
	assert.False(t, sku.Unique, "uniqueness of the referenced column is not copied")
	assert.NotNil(t, schemas["LineItem"].LookUpField("order_id"))

	_, err = manifest.LoadFiles(context.Background(), "testdata/shop.yaml", "testdata/missing.yaml")
	assert.Error(t, err)
}
