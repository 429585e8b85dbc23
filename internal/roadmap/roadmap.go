package roadmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no roadmap exists for the requested role.
var ErrNotFound = errors.New("roadmap not found")

type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Topic is one checklist entry of a roadmap.
type Topic struct {
	Title       string `json:"-"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// Document is a role's learning roadmap. Topics keep the order they appear
// in on disk, which is the order the checklist is studied in.
type Document struct {
	Role   string `json:"-"`
	Topics []Topic
}

// UnmarshalJSON decodes the on-disk object form, {"<title>": {...}, ...},
// via the token stream so topic order survives.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to parse roadmap: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to parse roadmap: expected a JSON object")
	}

	d.Topics = d.Topics[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to parse roadmap: %w", err)
		}
		title, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("failed to parse roadmap: non-string topic key")
		}

		var topic Topic
		if err := dec.Decode(&topic); err != nil {
			return fmt.Errorf("failed to parse roadmap topic %q: %w", title, err)
		}
		topic.Title = title
		d.Topics = append(d.Topics, topic)
	}
	return nil
}

// MarshalJSON emits the same ordered object form the loader reads.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, topic := range d.Topics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(topic.Title)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		body, err := json.Marshal(struct {
			Description string `json:"description"`
			Links       []Link `json:"links"`
		}{topic.Description, topic.Links})
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Loader resolves a role name to its roadmap document.
type Loader interface {
	Load(role string) (*Document, error)
}
