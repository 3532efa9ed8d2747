package testcase

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"dario.cat/mergo"
	"github.com/Masterminds/sprig/v3"
)

var (
	handlebarsRegex = regexp.MustCompile(`\{\{\s*([^}]*?)\s*\}\}`)
	identRegex      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
)

// templateKeywords are action words that must not be turned into field lookups.
var templateKeywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
	"define": true, "template": true, "block": true, "break": true, "continue": true,
	"nil": true, "true": true, "false": true,
}

// variant is one rendering of a document: its merged metadata and body.
type variant struct {
	data    map[string]interface{}
	content string
	spread  bool
}

var templateFuncs = func() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["lowercase"] = strings.ToLower
	return funcs
}()

// expandVariants returns one entry per item of the variants key, or the
// document itself when it has none. Every entry owns its metadata.
func expandVariants(raw map[string]interface{}, content string) ([]variant, error) {
	list, ok := raw["variants"]
	if !ok || list == nil {
		return []variant{{data: deepCopyMap(raw), content: content}}, nil
	}

	items, ok := list.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: variants must be a list", ErrMalformedDocument)
	}

	tmpl, err := template.New("variant").
		Funcs(templateFuncs).
		Option("missingkey=error").
		Parse(convertHandlebars(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse template: %v", ErrMalformedDocument, err)
	}

	result := make([]variant, 0, len(items))
	for i, item := range items {
		overrides, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: variant %d is not a mapping", ErrMalformedDocument, i)
		}

		data := deepCopyMap(raw)
		delete(data, "variants")
		if err := mergo.Merge(&data, deepCopyMap(overrides), mergo.WithOverride, mergo.WithAppendSlice); err != nil {
			return nil, fmt.Errorf("%w: failed to merge variant %d: %v", ErrMalformedDocument, i, err)
		}

		vars, _ := data["vars"].(map[string]interface{})
		delete(data, "vars")

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, vars); err != nil {
			return nil, fmt.Errorf("%w: failed to render variant %d: %v", ErrMalformedDocument, i, err)
		}

		result = append(result, variant{data: data, content: buf.String(), spread: true})
	}

	return result, nil
}

// convertHandlebars rewrites {{ name }} and {{ helper name }} into Go
// template field lookups.
func convertHandlebars(input string) string {
	return handlebarsRegex.ReplaceAllStringFunc(input, func(match string) string {
		inner := handlebarsRegex.FindStringSubmatch(match)[1]
		fields := strings.Fields(inner)
		for i, f := range fields {
			if !identRegex.MatchString(f) || templateKeywords[f] {
				continue
			}
			if _, isFunc := templateFuncs[f]; isFunc && i == 0 && len(fields) > 1 {
				continue
			}
			fields[i] = "." + f
		}
		return "{{ " + strings.Join(fields, " ") + " }}"
	})
}

// deepCopyMap creates a deep copy of a map[string]interface{}
func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}
	return result
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return val
	}
}
