// Package store is the hierarchical key-path document store the admin
// dashboard persists into. Paths are slash separated ("fleets/fleet-1").
//
// Values are kept as JSON leaves: every non-object value is one entry keyed
// by its full path, and objects exist only through their leaves. Writing an
// empty object therefore removes the path, which matches how a realtime
// document database behaves.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrInvalidPath = errors.New("invalid store path")

// Store is the four-primitive contract every repository is written against.
type Store interface {
	// Get decodes the subtree at path into dest. It reports false when
	// nothing is stored there.
	Get(ctx context.Context, path string, dest interface{}) (bool, error)
	// Set overwrites the subtree at path. A nil value removes it.
	Set(ctx context.Context, path string, value interface{}) error
	// Update overwrites each relative key under path. Keys may contain
	// slashes, nil values delete, and all keys commit together.
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	// Remove deletes the subtree at path.
	Remove(ctx context.Context, path string) error
}

func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}
	segments := strings.Split(trimmed, "/")
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" || strings.ContainsAny(seg, ".#$[]") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segments, nil
}

func cleanPath(path string) (string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return "", err
	}
	return strings.Join(segments, "/"), nil
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "/" + key
}

// ancestors lists every proper prefix of path, shortest first.
func ancestors(path string) []string {
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments)-1)
	for i := 1; i < len(segments); i++ {
		out = append(out, strings.Join(segments[:i], "/"))
	}
	return out
}

func inSubtree(key, path string) bool {
	if path == "" {
		return true
	}
	return key == path || strings.HasPrefix(key, path+"/")
}

// flatten turns value into leaves keyed by absolute path.
func flatten(path string, value interface{}) (map[string]json.RawMessage, error) {
	leaves := make(map[string]json.RawMessage)
	if value == nil {
		return leaves, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", path, err)
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	if err := walk(path, generic, leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

func walk(path string, value interface{}, leaves map[string]json.RawMessage) error {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		for key, child := range v {
			if _, err := splitPath(key); err != nil || key == "" || strings.Contains(key, "/") {
				return fmt.Errorf("%w: key %q under %q", ErrInvalidPath, key, path)
			}
			if err := walk(joinPath(path, key), child, leaves); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		for i, child := range v {
			if err := walk(joinPath(path, strconv.Itoa(i)), child, leaves); err != nil {
				return err
			}
		}
		return nil
	default:
		if path == "" {
			return fmt.Errorf("%w: scalar at root", ErrInvalidPath)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		leaves[path] = raw
		return nil
	}
}

// expand rebuilds the JSON document rooted at path from its leaves.
func expand(path string, leaves map[string]json.RawMessage) (json.RawMessage, bool, error) {
	if len(leaves) == 0 {
		return nil, false, nil
	}
	if raw, ok := leaves[path]; ok && len(leaves) == 1 {
		return raw, true, nil
	}

	keys := make([]string, 0, len(leaves))
	for key := range leaves {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := make(map[string]interface{})
	for _, key := range keys {
		rel := key
		if path != "" {
			rel = strings.TrimPrefix(key, path+"/")
		}
		segments := strings.Split(rel, "/")
		node := root
		for i, seg := range segments {
			if i == len(segments)-1 {
				node[seg] = leaves[key]
				break
			}
			child, ok := node[seg].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[seg] = child
			}
			node = child
		}
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// planUpdate validates an Update call and resolves it to absolute writes.
func planUpdate(path string, fields map[string]interface{}) (map[string]map[string]json.RawMessage, error) {
	base, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	writes := make(map[string]map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		rel, err := cleanPath(key)
		if err != nil {
			return nil, err
		}
		if rel == "" {
			return nil, fmt.Errorf("%w: empty update key", ErrInvalidPath)
		}
		target := joinPath(base, rel)
		leaves, err := flatten(target, value)
		if err != nil {
			return nil, err
		}
		writes[target] = leaves
	}

	targets := make([]string, 0, len(writes))
	for target := range writes {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	for i := 1; i < len(targets); i++ {
		if inSubtree(targets[i], targets[i-1]) {
			return nil, fmt.Errorf("%w: overlapping update keys %q and %q", ErrInvalidPath, targets[i-1], targets[i])
		}
	}
	return writes, nil
}

func decodeInto(raw json.RawMessage, dest interface{}) error {
	if dest == nil {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
