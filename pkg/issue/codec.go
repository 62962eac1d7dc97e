package issue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes annexes in AnnexedPublicationIDs order.
func (i Issue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"id":%d`, i.ID)
	if len(i.Annexes) > 0 {
		buf.WriteString(`,"annexes":{`)
		for n, id := range i.AnnexedPublicationIDs() {
			if n > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(id)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(i.Annexes[id])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the order of the annexes object in AnnexOrder.
func (i *Issue) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID      int             `json:"id"`
		Annexes json.RawMessage `json:"annexes"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = Issue{ID: raw.ID}
	if len(raw.Annexes) == 0 || bytes.Equal(raw.Annexes, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Annexes))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("issue %d: annexes must be an object", raw.ID)
	}
	i.Annexes = make(map[string]*AnnexEntry)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, _ := tok.(string)
		var entry *AnnexEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("issue %d: annex %q: %w", raw.ID, id, err)
		}
		i.SetAnnex(id, entry)
	}
	return nil
}

// UnmarshalYAML keeps the order of the annexes mapping in AnnexOrder.
func (i *Issue) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ID      int       `yaml:"id"`
		Annexes yaml.Node `yaml:"annexes"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*i = Issue{ID: raw.ID}
	switch raw.Annexes.Kind {
	case 0:
		return nil
	case yaml.ScalarNode:
		if raw.Annexes.Tag == "!!null" {
			return nil
		}
	case yaml.MappingNode:
		i.Annexes = make(map[string]*AnnexEntry)
		content := raw.Annexes.Content
		for n := 0; n+1 < len(content); n += 2 {
			id, val := content[n].Value, content[n+1]
			var entry *AnnexEntry
			if val.Tag != "!!null" {
				entry = &AnnexEntry{}
				if err := val.Decode(entry); err != nil {
					return fmt.Errorf("issue %d: annex %q: %w", raw.ID, id, err)
				}
			}
			i.SetAnnex(id, entry)
		}
		return nil
	}
	return fmt.Errorf("issue %d: annexes must be a mapping, line %d", raw.ID, raw.Annexes.Line)
}
