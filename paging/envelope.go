package paging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Warning is a non-fatal notice attached to a response.
type Warning struct {
	Module string `json:"module"`
	Code   string `json:"code,omitempty"`
	Text   string `json:"text"`
}

// Envelope splits one raw response into items, continuation and warnings.
type Envelope interface {
	Items(raw json.RawMessage) ([]json.RawMessage, error)
	Continuation(raw json.RawMessage) (Marker, error)
	Warnings(raw json.RawMessage) ([]Warning, error)
}

// QueryEnvelope reads action=query responses.
//
// List is the key under "query" holding the items, e.g. "allpages" or
// "recentchanges". With Generator set the items are read from "query.pages".
type QueryEnvelope struct {
	List      string
	Generator bool
}

func (e QueryEnvelope) key() string {
	if e.Generator || e.List == "" {
		return "pages"
	}
	return e.List
}

func (e QueryEnvelope) Items(raw json.RawMessage) ([]json.RawMessage, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	queryRaw, ok := top["query"]
	if !ok || isNull(queryRaw) {
		// MediaWiki drops "query" entirely when nothing matched.
		return nil, nil
	}
	query, err := decodeObject(queryRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnexpectedData, err)
	}
	itemsRaw, ok := query[e.key()]
	if !ok || isNull(itemsRaw) {
		return nil, nil
	}
	return decodeItems(itemsRaw)
}

// Continuation reads the "continue" object, falling back to the legacy
// "query-continue" form used by pre-1.26 servers.
func (e QueryEnvelope) Continuation(raw json.RawMessage) (Marker, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if cont, ok := top["continue"]; ok && !isNull(cont) {
		return flatMarker(cont)
	}
	legacy, ok := top["query-continue"]
	if !ok || isNull(legacy) {
		return nil, nil
	}
	modules, err := decodeObject(legacy)
	if err != nil {
		return nil, fmt.Errorf("%w: query-continue: %v", ErrUnexpectedData, err)
	}
	marker := Marker{}
	for _, modRaw := range modules {
		part, err := flatMarker(modRaw)
		if err != nil {
			return nil, err
		}
		for k, v := range part {
			marker[k] = v
		}
	}
	if marker.IsEmpty() {
		return nil, nil
	}
	return marker, nil
}

func (e QueryEnvelope) Warnings(raw json.RawMessage) ([]Warning, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	return parseWarnings(top)
}

// SearchContinueEnvelope reads Wikibase wbsearchentities responses, which
// carry items at the top level and an integer offset in "search-continue".
type SearchContinueEnvelope struct {
	// Key holds the items; "search" when empty.
	Key string
}

// SearchContinueParam is the request parameter the offset is sent back in.
const SearchContinueParam = "continue"

func (e SearchContinueEnvelope) Items(raw json.RawMessage) ([]json.RawMessage, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	key := e.Key
	if key == "" {
		key = "search"
	}
	itemsRaw, ok := top[key]
	if !ok || isNull(itemsRaw) {
		return nil, nil
	}
	return decodeItems(itemsRaw)
}

func (e SearchContinueEnvelope) Continuation(raw json.RawMessage) (Marker, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	offset, ok := top["search-continue"]
	if !ok || isNull(offset) {
		return nil, nil
	}
	v, err := scalarString(offset)
	if err != nil {
		return nil, fmt.Errorf("%w: search-continue: %v", ErrUnexpectedData, err)
	}
	return Marker{SearchContinueParam: v}, nil
}

func (e SearchContinueEnvelope) Warnings(raw json.RawMessage) ([]Warning, error) {
	top, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	return parseWarnings(top)
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedData, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: response is not a JSON object", ErrUnexpectedData)
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// decodeItems accepts either an array or an object keyed by id. The object
// form is what formatversion=1 returns for generator pages, and its document
// order is the server order.
func decodeItems(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: items: %v", ErrUnexpectedData, err)
		}
		return items, nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: items: %v", ErrUnexpectedData, err)
		}
		var items []json.RawMessage
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("%w: items: %v", ErrUnexpectedData, err)
			}
			var item json.RawMessage
			if err := dec.Decode(&item); err != nil {
				return nil, fmt.Errorf("%w: items: %v", ErrUnexpectedData, err)
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("%w: items must be an array or object, got %.20s", ErrUnexpectedData, trimmed)
	}
}

func flatMarker(raw json.RawMessage) (Marker, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if len(obj) == 0 {
		return nil, nil
	}
	marker := make(Marker, len(obj))
	for k, v := range obj {
		s, err := scalarString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: continuation %s: %v", ErrUnexpectedData, k, err)
		}
		marker[k] = s
	}
	return marker, nil
}

// scalarString renders strings, numbers and booleans as request parameter values.
func scalarString(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("expected scalar, got %.20s", trimmed)
	}
	switch string(trimmed) {
	case "true":
		return "1", nil
	case "false", "null":
		return "", nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// parseWarnings understands the object form {"module": {"warnings"|"*": text}}
// as well as the array form [{"module", "code", "text"}] sent with errorformat.
func parseWarnings(top map[string]json.RawMessage) ([]Warning, error) {
	raw, ok := top["warnings"]
	if !ok || isNull(raw) {
		return nil, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '[' {
		var list []Warning
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: warnings: %v", ErrUnexpectedData, err)
		}
		return list, nil
	}

	modules, err := decodeObject(trimmed)
	if err != nil {
		return nil, err
	}
	warnings := make([]Warning, 0, len(modules))
	for module, body := range modules {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("%w: warnings.%s: %v", ErrUnexpectedData, module, err)
		}
		text := fields["warnings"]
		if text == nil {
			text = fields["*"]
		}
		var s string
		if text != nil {
			if err := json.Unmarshal(text, &s); err != nil {
				return nil, fmt.Errorf("%w: warnings.%s: %v", ErrUnexpectedData, module, err)
			}
		}
		warnings = append(warnings, Warning{Module: module, Text: strings.TrimSpace(s)})
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Module < warnings[j].Module })
	return warnings, nil
}
