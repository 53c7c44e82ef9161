package util

import (
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
    if s == "" {
        return def
    }
    v, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return v
}

// KV is one entry of an ordered string mapping.
type KV struct {
    Key   string
    Value string
}

// ParseOrderedMapping decodes a flat JSON object of strings, keeping key order.
// Duplicate keys keep the last value at the position of the first.
func ParseOrderedMapping(raw string) ([]KV, error) {
    dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(raw))))
    tok, err := dec.Token()
    if err != nil {
        return nil, fmt.Errorf("parse mapping: %w", err)
    }
    if d, ok := tok.(json.Delim); !ok || d != '{' {
        return nil, fmt.Errorf("parse mapping: expected JSON object")
    }

    var out []KV
    pos := make(map[string]int)
    for dec.More() {
        kt, err := dec.Token()
        if err != nil {
            return nil, fmt.Errorf("parse mapping: %w", err)
        }
        key, _ := kt.(string)
        var val string
        if err := dec.Decode(&val); err != nil {
            return nil, fmt.Errorf("parse mapping: value of %q: %w", key, err)
        }
        if i, ok := pos[key]; ok {
            out[i].Value = val
            continue
        }
        pos[key] = len(out)
        out = append(out, KV{Key: key, Value: val})
    }
    if _, err := dec.Token(); err != nil {
        return nil, fmt.Errorf("parse mapping: %w", err)
    }
    if _, err := dec.Token(); !errors.Is(err, io.EOF) {
        return nil, fmt.Errorf("parse mapping: unexpected data after object")
    }
    return out, nil
}
