package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderSchema() *Schema {
	item := New("item",
		String("sku", "Stock keeping unit", WithPattern(`^[A-Z]{3}-\d+$`)),
		Float("price", "Unit price", WithMin(0)),
		Int("quantity", "Units ordered", WithMin(1), WithMax(100), WithDefault(1)),
	).Require("sku", "price")

	return New("create_order",
		String("customer", "Customer id"),
		String("currency", "ISO currency code", WithPattern(`^[A-Z]{3}$`), WithDefault("EUR")),
		Object("shipping", "Shipping address", New("address",
			String("street", "Street line"),
			String("country", "Country code", WithPattern(`^[A-Z]{2}$`)),
		).Require("street")),
		ObjectList("items", "Order lines", item),
	).Require("customer", "items")
}

func TestValidate_Success(t *testing.T) {
	params, failures := orderSchema().Validate(map[string]any{
		"customer": "c-1",
		"items": []any{
			map[string]any{"sku": "ABC-1", "price": 9.5},
			map[string]any{"sku": "XYZ-2", "price": 3.0, "quantity": float64(4)},
		},
		"shipping": map[string]any{"street": "Main St 1", "country": "DE"},
	})
	require.Empty(t, failures)
	require.NotNil(t, params)

	assert.Equal(t, "c-1", params.String("customer"))
	assert.Equal(t, "EUR", params.String("currency")) // default applied

	items := params.ObjectList("items")
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].Int("quantity")) // nested default
	assert.Equal(t, int64(4), items[1].Int("quantity")) // whole float accepted as int
	assert.Equal(t, 9.5, items[0].Float("price"))

	assert.Equal(t, "Main St 1", params.Object("shipping").String("street"))
}

func TestValidate_RequiredMissing(t *testing.T) {
	_, failures := orderSchema().Validate(map[string]any{"customer": "c-1"})
	require.Len(t, failures, 1)
	assert.Equal(t, "items", failures[0].Field)
	assert.Equal(t, "required field is missing", failures[0].Message)
}

func TestValidate_TypeMismatch(t *testing.T) {
	s := New("calc",
		Int("count", "How many"),
		Bool("dry_run", "Skip side effects"),
	).Require("count")

	_, failures := s.Validate(map[string]any{"count": "three", "dry_run": 1})
	require.Len(t, failures, 2)
	assert.Equal(t, "count", failures[0].Field)
	assert.Contains(t, failures[0].Message, "expected type integer, got string")
	assert.Contains(t, failures[1].Message, "expected type boolean")
}

func TestValidate_FractionalIntRejected(t *testing.T) {
	s := New("calc", Int("count", "How many")).Require("count")
	_, failures := s.Validate(map[string]any{"count": 2.5})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "expected type integer")
}

func TestValidate_Bounds(t *testing.T) {
	s := New("resize", Int("percent", "Scale percent", WithMin(1), WithMax(500)))

	_, failures := s.Validate(map[string]any{"percent": 0})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "below minimum 1")

	_, failures = s.Validate(map[string]any{"percent": 501})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "above maximum 500")
}

func TestValidate_Pattern(t *testing.T) {
	_, failures := orderSchema().Validate(map[string]any{
		"customer": "c-1",
		"currency": "euro",
		"items":    []any{map[string]any{"sku": "ABC-1", "price": 1.0}},
	})
	require.Len(t, failures, 1)
	assert.Equal(t, "currency", failures[0].Field)
	assert.Contains(t, failures[0].Message, "does not match pattern")
}

func TestValidate_NestedPaths(t *testing.T) {
	_, failures := orderSchema().Validate(map[string]any{
		"customer": "c-1",
		"items": []any{
			map[string]any{"sku": "ABC-1", "price": 1.0},
			map[string]any{"sku": "bad", "price": -2.0},
		},
		"shipping": map[string]any{"country": "DE"},
	})
	require.Len(t, failures, 3)

	fields := make([]string, len(failures))
	for i, f := range failures {
		fields[i] = f.Field
	}
	assert.Contains(t, fields, "shipping.street")
	assert.Contains(t, fields, "items[1].sku")
	assert.Contains(t, fields, "items[1].price")
}

func TestValidate_CrossFieldRules(t *testing.T) {
	s := New("range",
		Int("from", "Range start"),
		Int("to", "Range end"),
	).Require("from", "to").Rule("from_before_to", func(p *Params) error {
		if p.Int("from") > p.Int("to") {
			return fmt.Errorf("from must not exceed to")
		}
		return nil
	})

	params, failures := s.Validate(map[string]any{"from": 1, "to": 5})
	require.Empty(t, failures)
	assert.Equal(t, int64(5), params.Int("to"))

	_, failures = s.Validate(map[string]any{"from": 9, "to": 5})
	require.Len(t, failures, 1)
	assert.Equal(t, "from_before_to", failures[0].Field)
	assert.Equal(t, "from must not exceed to", failures[0].Message)
}

func TestValidate_RulesSkippedWhenFieldsFail(t *testing.T) {
	ran := false
	s := New("range",
		Int("from", "Range start"),
	).Require("from").Rule("never", func(p *Params) error {
		ran = true
		return nil
	})

	_, failures := s.Validate(map[string]any{})
	require.NotEmpty(t, failures)
	assert.False(t, ran, "cross-field rule must not run when per-field checks fail")
}

func TestValidate_UnknownArgumentsIgnored(t *testing.T) {
	s := New("noop", String("name", "A name"))
	params, failures := s.Validate(map[string]any{"name": "x", "extra": 1})
	require.Empty(t, failures)
	assert.False(t, params.Has("extra"))
}

func TestJSONSchema(t *testing.T) {
	js := orderSchema().JSONSchema()
	assert.Equal(t, "object", js["type"])

	props, ok := js["properties"].(map[string]any)
	require.True(t, ok)
	currency := props["currency"].(map[string]any)
	assert.Equal(t, "string", currency["type"])
	assert.Equal(t, `^[A-Z]{3}$`, currency["pattern"])

	items := props["items"].(map[string]any)
	assert.Equal(t, "array", items["type"])
	itemSchema := items["items"].(map[string]any)
	assert.Equal(t, "object", itemSchema["type"])

	assert.ElementsMatch(t, []string{"customer", "items"}, js["required"])
}
