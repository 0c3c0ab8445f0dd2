// Package script parses the YAML script surface into the parsed tree,
// guaranteeing the tree contract the pipeline relies on: unique keys,
// single parent assignment, path-deterministic node references, and
// basic-type-tagged simple values.
package script

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
)

// Problem codes for script parsing.
const (
	CodeNotMapping    = "PRS001"
	CodeTypeSelector  = "PRS002"
	CodeMissingValue  = "PRS003"
	CodeBadItems      = "PRS004"
	CodeExtraKeys     = "PRS005"
	CodeBadReserved   = "PRS006"
	CodeMissingWith   = "PRS007"
)

// Reserved top-level keys, consumed before tree construction.
const (
	keyName     = "name"
	keyVersion  = "version"
	keyRequires = "requires"
)

// Parsed is the structured result of parsing one script.
type Parsed struct {
	// Name is the script's declared name, defaulting to the source name.
	Name string
	// Version is the script's declared version, defaulting to "0".
	Version string
	// Requires lists the add-in include names the script asks for.
	Requires []string
	// Root is the built parse tree.
	Root *parsetree.ParameterNode
}

// Parse parses the script source. Malformed node content attaches
// problems and keeps going; only an unreadable document is a hard error.
func Parse(sourceName string, src []byte) (*Parsed, []*problem.Problem, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing script %s: %w", sourceName, err)
	}
	if raw == nil {
		return nil, nil, fmt.Errorf("script %s must be a mapping with at least the %q element", sourceName, "main")
	}

	p := &parser{source: problem.Path{sourceName}}
	parsed := &Parsed{
		Name:    p.reservedString(raw, keyName, sourceName),
		Version: p.reservedString(raw, keyVersion, "0"),
		Root: parsetree.NewParameterNode(parsetree.NodeID{
			Source: problem.Path{sourceName},
			Ref:    problem.Path{},
		}, ""),
	}
	parsed.Requires = p.reservedRequires(raw)

	for _, key := range sortedKeys(raw) {
		childData, ok := raw[key].(map[string]any)
		if !ok {
			p.add(problem.Validation(
				CodeNotMapping, p.source.Child(key),
				"top-level entries must be mappings",
			))
			continue
		}
		if node := p.parseNode(p.source.Child(key), problem.Path{key}, childData); node != nil {
			parsed.Root.Set(key, node)
		}
	}
	return parsed, p.problems.Problems(), nil
}

type parser struct {
	source   problem.Path
	problems problem.Collector
}

func (p *parser) add(probs ...*problem.Problem) { p.problems.Add(probs...) }

// reservedString consumes an optional reserved scalar key.
func (p *parser) reservedString(raw map[string]any, key, fallback string) string {
	val, present := raw[key]
	if !present {
		return fallback
	}
	delete(raw, key)
	switch v := val.(type) {
	case string:
		if v != "" {
			return v
		}
	case int:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	}
	p.add(problem.Validation(
		CodeBadReserved, p.source.Child(key),
		"%q, if given, must be a non-empty scalar", key,
	))
	return fallback
}

// reservedRequires consumes the add-in include list.
func (p *parser) reservedRequires(raw map[string]any) []string {
	val, present := raw[keyRequires]
	if !present {
		return nil
	}
	delete(raw, keyRequires)
	items, ok := val.([]any)
	if !ok {
		p.add(problem.Validation(
			CodeBadReserved, p.source.Child(keyRequires),
			"%q must be a list of add-in names", keyRequires,
		))
		return nil
	}
	var out []string
	for _, item := range items {
		name, ok := item.(string)
		if !ok || name == "" {
			p.add(problem.Validation(
				CodeBadReserved, p.source.Child(keyRequires),
				"%q entries must be non-empty strings", keyRequires,
			))
			continue
		}
		out = append(out, name)
	}
	return out
}

// parseNode parses one node mapping. Exactly one of "as" and "as-list"
// selects the node's declared type; basic type ids produce simple nodes
// (or lists of them), anything else produces a parameter node (or a list
// of parameter nodes under "items").
func (p *parser) parseNode(source, ref problem.Path, data map[string]any) parsetree.Node {
	asVal, hasAs := data["as"]
	asListVal, hasAsList := data["as-list"]
	if hasAs == hasAsList {
		p.add(problem.Validation(
			CodeTypeSelector, source, "exactly one of %q and %q must be present", "as", "as-list",
		))
		return nil
	}
	selector := "as"
	typeVal := asVal
	if hasAsList {
		selector = "as-list"
		typeVal = asListVal
	}
	delete(data, selector)
	typeID, ok := typeVal.(string)
	if !ok || typeID == "" {
		p.add(problem.Validation(
			CodeTypeSelector, source, "%q must name a type", selector,
		))
		return nil
	}

	var node parsetree.Node
	if nodetype.IsBasicTypeID(typeID) {
		node = p.parseBasic(source, ref, data, nodetype.BasicTypeID(typeID), hasAsList)
	} else if hasAsList {
		node = p.parseConstructList(source, ref, data, typeID)
	} else {
		node = p.parseConstruct(source, ref, data, typeID)
	}

	for _, key := range sortedKeys(data) {
		p.add(problem.Validation(
			CodeExtraKeys, source, "unsupported key %q in node definition", key,
		))
	}
	return node
}

// parseBasic parses a simple leaf ("value") or a list of them ("items").
func (p *parser) parseBasic(source, ref problem.Path, data map[string]any, basicID nodetype.BasicTypeID, isList bool) parsetree.Node {
	if !isList {
		value, present := data["value"]
		if !present {
			p.add(problem.Validation(
				CodeMissingValue, source, "basic type %q must have a %q", basicID, "value",
			))
			return nil
		}
		delete(data, "value")
		return parsetree.NewSimpleNode(
			parsetree.NodeID{Source: source, Ref: ref},
			basicID, tagBasicValue(basicID, value),
		)
	}

	items, ok := p.takeItems(source, data)
	if !ok {
		return nil
	}
	list := parsetree.NewListNode(parsetree.NodeID{Source: source, Ref: ref})
	for i, item := range items {
		idx := fmt.Sprintf("%d", i)
		list.Append(parsetree.NewSimpleNode(
			parsetree.NodeID{Source: source.Child(idx), Ref: ref.Child(idx)},
			basicID, tagBasicValue(basicID, item),
		))
	}
	return list
}

// parseConstruct parses a parameter node: the "with" mapping holds the
// node's keyed children.
func (p *parser) parseConstruct(source, ref problem.Path, data map[string]any, typeID string) parsetree.Node {
	withVal, present := data["with"]
	if !present {
		p.add(problem.Validation(CodeMissingWith, source, "type %q must have a %q mapping", typeID, "with"))
		return nil
	}
	delete(data, "with")
	withMap, ok := withVal.(map[string]any)
	if !ok {
		p.add(problem.Validation(CodeMissingWith, source, "%q must be a mapping", "with"))
		return nil
	}

	node := parsetree.NewParameterNode(parsetree.NodeID{Source: source, Ref: ref}, typeID)
	for _, key := range sortedKeys(withMap) {
		childData, ok := withMap[key].(map[string]any)
		if !ok {
			p.add(problem.Validation(
				CodeNotMapping, source.Child(key), "entries under %q must be mappings", "with",
			))
			continue
		}
		if child := p.parseNode(source.Child(key), ref.Child(key), childData); child != nil {
			node.Set(key, child)
		}
	}
	return node
}

// parseConstructList parses an "as-list" construct: each entry of "items"
// is itself a construct node mapping with its own "with".
func (p *parser) parseConstructList(source, ref problem.Path, data map[string]any, typeID string) parsetree.Node {
	items, ok := p.takeItems(source, data)
	if !ok {
		return nil
	}
	list := parsetree.NewListNode(parsetree.NodeID{Source: source, Ref: ref})
	for i, item := range items {
		idx := fmt.Sprintf("%d", i)
		itemData, ok := item.(map[string]any)
		if !ok {
			p.add(problem.Validation(
				CodeBadItems, source.Child(idx), "entries under %q must be mappings", "items",
			))
			continue
		}
		if child := p.parseConstruct(source.Child(idx), ref.Child(idx), itemData, typeID); child != nil {
			list.Append(child)
		}
	}
	return list
}

// takeItems consumes and type-checks the "items" list.
func (p *parser) takeItems(source problem.Path, data map[string]any) ([]any, bool) {
	itemsVal, present := data["items"]
	if !present {
		p.add(problem.Validation(CodeMissingValue, source, "list node must have an %q list", "items"))
		return nil, false
	}
	delete(data, "items")
	items, ok := itemsVal.([]any)
	if !ok {
		p.add(problem.Validation(CodeBadItems, source, "%q must be a list", "items"))
		return nil, false
	}
	return items, true
}

// tagBasicValue normalizes a decoded YAML value for its declared basic
// type where the YAML shape allows it; values that cannot be normalized
// are stored as-is for the validator to report.
func tagBasicValue(basicID nodetype.BasicTypeID, value any) any {
	if basicID != nodetype.BasicReference {
		return value
	}
	items, ok := value.([]any)
	if !ok {
		return value
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return value
		}
		out = append(out, s)
	}
	return out
}

// sortedKeys returns map keys in sorted order so parse problems and tree
// construction are reproducible run to run.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
