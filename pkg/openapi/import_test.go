package openapi_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcompiler/pkg/definition"
	"github.com/goliatone/go-formcompiler/pkg/formerrors"
	"github.com/goliatone/go-formcompiler/pkg/logging"
	"github.com/goliatone/go-formcompiler/pkg/openapi"
	"github.com/goliatone/go-formcompiler/pkg/validation"
)

const articlesDocument = `{
  "openapi": "3.0.3",
  "info": { "title": "Articles", "version": "2.1.0" },
  "paths": {
    "/articles": {
      "post": {
        "operationId": "createArticle",
        "requestBody": {
          "content": {
            "application/json": { "schema": { "$ref": "#/components/schemas/Article" } }
          }
        },
        "responses": { "201": { "description": "created" } }
      },
      "get": {
        "operationId": "listArticles",
        "responses": { "200": { "description": "ok" } }
      }
    },
    "/tags": {
      "post": {
        "operationId": "createTag",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "properties": {
                  "name": { "type": "string" },
                  "aliases": { "type": "array", "items": { "type": "string" } }
                }
              }
            }
          }
        },
        "responses": { "201": { "description": "created" } }
      }
    }
  },
  "components": {
    "schemas": {
      "Article": {
        "type": "object",
        "required": ["title", "status"],
        "properties": {
          "title": { "type": "string", "title": "Title", "maxLength": 120 },
          "body": { "type": "string", "maxLength": 5000 },
          "summary": { "type": "string", "format": "textarea", "description": "Short teaser" },
          "status": { "type": "string", "enum": ["draft", "published"], "default": "draft" },
          "rating": { "type": "integer" },
          "publish_at": {
            "type": "string",
            "format": "date-time",
            "x-condition": { "field": "status", "value": "published" }
          },
          "featured": { "type": "boolean", "default": false }
        }
      }
    }
  }
}`

func TestImportMapsRequestBody(t *testing.T) {
	t.Parallel()

	got, err := openapi.Import(context.Background(), []byte(articlesDocument), "createArticle")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := definition.FormDefinition{
		Version: "2.1.0",
		Fields: []definition.FieldDefinition{
			{ID: "body", Name: "body", Kind: definition.KindLongText, Label: "body"},
			{ID: "featured", Name: "featured", Kind: definition.KindBoolean, Label: "featured", DefaultValue: false},
			{
				ID:        "publish_at",
				Name:      "publish_at",
				Kind:      definition.KindDate,
				Label:     "publish_at",
				Condition: &definition.Condition{TargetFieldID: "status", Operator: definition.OperatorEquals, Value: "published"},
			},
			{ID: "rating", Name: "rating", Kind: definition.KindNumber, Label: "rating"},
			{
				ID:           "status",
				Name:         "status",
				Kind:         definition.KindSingleChoice,
				Label:        "status",
				Required:     true,
				Options:      []definition.Option{{Label: "draft", Value: "draft"}, {Label: "published", Value: "published"}},
				DefaultValue: "draft",
			},
			{ID: "summary", Name: "summary", Kind: definition.KindLongText, Label: "summary", Placeholder: "Short teaser"},
			{ID: "title", Name: "title", Kind: definition.KindText, Label: "Title", Required: true},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestImportedDefinitionCompiles(t *testing.T) {
	t.Parallel()

	def, err := openapi.Import(context.Background(), []byte(articlesDocument), "createArticle")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	svc := validation.New(validation.WithLogger(logging.Discard()))

	got := svc.ValidateVisible(map[string]any{"title": "Hello", "rating": "4"}, def)
	want := validation.Result{Success: true, Data: map[string]any{
		"title":    "Hello",
		"rating":   float64(4),
		"status":   "draft",
		"featured": false,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := map[string]struct {
		operation string
		contains  string
	}{
		"unknown operation": {operation: "deleteArticle", contains: `operation "deleteArticle" not found`},
		"no request body":   {operation: "listArticles", contains: "no object request body"},
		"unsupported type":  {operation: "createTag", contains: `unsupported property type "array"`},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := openapi.Import(ctx, []byte(articlesDocument), tc.operation)
			if err == nil || !strings.Contains(err.Error(), tc.contains) {
				t.Fatalf("expected error containing %q, got %v", tc.contains, err)
			}
		})
	}

	_, err := openapi.Import(ctx, []byte(articlesDocument), "createTag")
	if !formerrors.IsKind(err, formerrors.KindValidation) {
		t.Fatalf("expected property errors to be typed, got %T", err)
	}

	if _, err := openapi.Import(ctx, nil, "createArticle"); err == nil {
		t.Fatalf("expected empty payload to fail")
	}
}

func TestLoadFSAndOperationIDs(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"specs/articles.json": &fstest.MapFile{Data: []byte(articlesDocument)}}
	doc, err := openapi.LoadFS(context.Background(), fsys, "specs/articles.json")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if doc.Location() != "specs/articles.json" {
		t.Fatalf("unexpected location %q", doc.Location())
	}

	ids, err := openapi.OperationIDs(context.Background(), doc)
	if err != nil {
		t.Fatalf("OperationIDs: %v", err)
	}
	if diff := cmp.Diff([]string{"createArticle", "createTag", "listArticles"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if _, err := openapi.LoadFS(context.Background(), fsys, "missing.json"); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
