package catalog

import (
	"relay-graphql/internal/naming"
	"relay-graphql/internal/operators"
)

// Model names of the demo schema.
const (
	Person = "Person"
	Post   = "Post"
	Tag    = "Tag"
)

// PrimaryKeyField is the field name of every demo model's primary key.
const PrimaryKeyField = "databaseId"

// Demo returns the people/posts/tags catalog. Table and key names are
// derived with namer.
func Demo(namer *naming.Namer) *Catalog {
	if namer == nil {
		namer = naming.Default()
	}
	postTag := &Through{
		Table:     namer.JoinTableName(Post, Tag),
		SourceKey: namer.ForeignKey(Post),
		TargetKey: namer.ForeignKey(Tag),
	}
	tagPost := &Through{
		Table:     postTag.Table,
		SourceKey: postTag.TargetKey,
		TargetKey: postTag.SourceKey,
	}

	person := &Model{
		Name:        Person,
		Table:       namer.TableName(Person),
		Description: "A person who writes posts.",
		PrimaryKey:  PrimaryKeyField,
		Fields: []Field{
			primaryKey(),
			{Name: "firstName", Column: namer.ColumnName("firstName"), Scalar: operators.String, NonNull: true, Filterable: true},
			{Name: "lastName", Column: namer.ColumnName("lastName"), Scalar: operators.String, NonNull: true, Filterable: true},
			{
				Name: "email", Column: namer.ColumnName("email"), Scalar: operators.String, NonNull: true, Filterable: true,
				Operators: []operators.Kind{operators.Eq, operators.In},
			},
			{Name: "age", Column: namer.ColumnName("age"), Scalar: operators.Int, Filterable: true},
		},
		Relations: []Relation{{
			Name:           "posts",
			Kind:           HasMany,
			Target:         Post,
			ForeignKey:     namer.ForeignKey(Person),
			FilterArgument: "wherePost",
			Description:    "Posts written by the person.",
		}},
		Always: []string{PrimaryKeyField},
	}

	post := &Model{
		Name:        Post,
		Table:       namer.TableName(Post),
		Description: "A blog post.",
		PrimaryKey:  PrimaryKeyField,
		Fields: []Field{
			primaryKey(),
			{Name: "title", Column: namer.ColumnName("title"), Scalar: operators.String, NonNull: true, Filterable: true},
			{
				Name: "content", Column: namer.ColumnName("content"), Scalar: operators.String, Filterable: true,
				Operators: []operators.Kind{operators.Like, operators.ILike},
			},
			{
				Name: "personId", Column: namer.ForeignKey(Person), Scalar: operators.Int, NonNull: true, Filterable: true,
				Operators: []operators.Kind{operators.Eq, operators.In},
			},
		},
		Relations: []Relation{
			{
				Name:        "person",
				Kind:        BelongsTo,
				Target:      Person,
				LocalField:  "personId",
				Description: "Author of the post.",
			},
			{
				Name:           "tags",
				Kind:           ManyToMany,
				Target:         Tag,
				Through:        postTag,
				FilterArgument: "whereTag",
				Description:    "Tags attached to the post.",
			},
		},
		Always: []string{PrimaryKeyField, "personId"},
	}

	tag := &Model{
		Name:        Tag,
		Table:       namer.TableName(Tag),
		Description: "A lowercase label shared by posts.",
		PrimaryKey:  PrimaryKeyField,
		Fields: []Field{
			primaryKey(),
			{Name: "name", Column: namer.ColumnName("name"), Scalar: operators.String, NonNull: true, Filterable: true},
		},
		Relations: []Relation{{
			Name:        "posts",
			Kind:        ManyToMany,
			Target:      Post,
			Through:     tagPost,
			Description: "Posts carrying the tag.",
		}},
		Always: []string{PrimaryKeyField},
	}

	c, err := New(person, post, tag)
	if err != nil {
		panic(err)
	}
	return c
}

func primaryKey() Field {
	return Field{
		Name:        PrimaryKeyField,
		Column:      "id",
		Scalar:      operators.Int,
		Description: "Primary key of the row.",
		NonNull:     true,
		Filterable:  true,
		Operators:   []operators.Kind{operators.Eq, operators.In, operators.Lt, operators.Gt},
	}
}
