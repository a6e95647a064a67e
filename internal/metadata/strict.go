package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	keyCourseID          = "course_id"
	keyCourseName        = "course_name"
	keyCourseDescription = "course_description"
)

func isLocaleMap(key string) bool {
	return key == keyCourseName || key == keyCourseDescription
}

func duplicateKey(parent, key string) error {
	if parent == "" {
		return fmt.Errorf("%w %q", ErrDuplicateKey, key)
	}
	return fmt.Errorf("%s: %w %q", parent, ErrDuplicateKey, key)
}

func nonString(field string) error {
	return fmt.Errorf("%s: %w", field, ErrNonStringValue)
}

// checkYAMLDocument applies the rules yaml.v3 would otherwise relax: scalars
// are not coerced into strings and unknown keys are rejected.
func checkYAMLDocument(root *yaml.Node) error {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return errors.New("document must be a mapping")
	}

	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolveYAMLAlias(node.Content[i+1])
		if _, dup := seen[key]; dup {
			return duplicateKey("", key)
		}
		seen[key] = struct{}{}

		switch {
		case key == keyCourseID:
			if !isYAMLString(value) {
				return nonString(key)
			}
		case isLocaleMap(key):
			if err := checkYAMLLocales(key, value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return nil
}

func checkYAMLLocales(field string, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		locale := node.Content[i].Value
		if _, dup := seen[locale]; dup {
			return duplicateKey(field, locale)
		}
		seen[locale] = struct{}{}

		if !isYAMLString(resolveYAMLAlias(node.Content[i+1])) {
			return nonString(fmt.Sprintf("%s %q", field, locale))
		}
	}
	return nil
}

func resolveYAMLAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isYAMLString(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str"
}

type jsonFrame struct {
	object    bool
	field     string
	key       string
	keys      map[string]struct{}
	expectKey bool
}

// checkJSONDocument walks the token stream once, rejecting repeated object
// keys, non-string values where strings are expected, and anything after the
// first top-level value.
func checkJSONDocument(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	var (
		stack  []*jsonFrame
		values int
	)
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if len(stack) == 0 {
			values++
			if values > 1 {
				return ErrTrailingData
			}
		}

		var top *jsonFrame
		if n := len(stack); n > 0 {
			top = stack[n-1]
		}

		if top != nil && top.object && top.expectKey {
			if tok == json.Delim('}') {
				stack = stack[:len(stack)-1]
				valueDone()
				continue
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", tok)
			}
			if _, dup := top.keys[key]; dup {
				return duplicateKey(top.field, key)
			}
			top.keys[key] = struct{}{}
			top.key = key
			top.expectKey = false
			continue
		}

		if field, ok := jsonStringField(stack); ok {
			if _, isString := tok.(string); !isString {
				return nonString(field)
			}
		}

		switch tok {
		case json.Delim('{'):
			stack = append(stack, &jsonFrame{
				object:    true,
				field:     jsonFieldOf(top),
				keys:      make(map[string]struct{}),
				expectKey: true,
			})
		case json.Delim('['):
			stack = append(stack, &jsonFrame{field: jsonFieldOf(top)})
		case json.Delim(']'):
			stack = stack[:len(stack)-1]
			valueDone()
		default:
			valueDone()
		}
	}
}

// jsonStringField reports whether the value about to be read must be a
// string, and names it for the error.
func jsonStringField(stack []*jsonFrame) (string, bool) {
	switch len(stack) {
	case 1:
		if top := stack[0]; top.object && top.key == keyCourseID {
			return keyCourseID, true
		}
	case 2:
		if top := stack[1]; top.object && stack[0].object && isLocaleMap(top.field) {
			return fmt.Sprintf("%s %q", top.field, top.key), true
		}
	}
	return "", false
}

func jsonFieldOf(parent *jsonFrame) string {
	switch {
	case parent == nil:
		return ""
	case parent.object:
		return parent.key
	default:
		return parent.field
	}
}

// checkHCLBody inspects the native syntax tree, where object constructors
// still carry every key; gohcl would keep only the last of a repeated key.
func checkHCLBody(body hcl.Body) error {
	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		return nil
	}

	for name, attr := range syntaxBody.Attributes {
		switch {
		case name == keyCourseID:
			value, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				continue
			}
			if !isCtyString(value) {
				return nonString(name)
			}
		case isLocaleMap(name):
			if err := checkHCLLocales(name, attr.Expr); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkHCLLocales(field string, expr hclsyntax.Expression) error {
	object, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, len(object.Items))
	for _, item := range object.Items {
		key, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() || !isCtyString(key) {
			continue
		}
		locale := key.AsString()
		if _, dup := seen[locale]; dup {
			return duplicateKey(field, locale)
		}
		seen[locale] = struct{}{}

		value, diags := item.ValueExpr.Value(nil)
		if diags.HasErrors() {
			continue
		}
		if !isCtyString(value) {
			return nonString(fmt.Sprintf("%s %q", field, locale))
		}
	}
	return nil
}

func isCtyString(v cty.Value) bool {
	return v.IsKnown() && !v.IsNull() && v.Type().Equals(cty.String)
}
