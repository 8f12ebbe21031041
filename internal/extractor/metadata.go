package extractor

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// metadata is the optional YAML file a team can add to describe its
// project explicitly.
type metadata struct {
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	Contributors stringList `yaml:"contributors"`
	Assets       stringList `yaml:"assets"`
}

// stringList accepts a scalar, a sequence of scalars, or a sequence of
// mappings with a name or url key.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value != "" {
			*l = stringList{value.Value}
		}
		return nil
	case yaml.SequenceNode:
		out := make(stringList, 0, len(value.Content))
		for _, item := range value.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				out = append(out, item.Value)
			case yaml.MappingNode:
				var entry struct {
					Name string `yaml:"name"`
					URL  string `yaml:"url"`
				}
				if err := item.Decode(&entry); err != nil {
					return err
				}
				if entry.Name != "" {
					out = append(out, entry.Name)
				} else if entry.URL != "" {
					out = append(out, entry.URL)
				}
			default:
				return fmt.Errorf("line %d: unsupported list entry", item.Line)
			}
		}
		*l = out
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list", value.Line)
}

func parseMetadata(data []byte) (metadata, error) {
	var m metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return metadata{}, err
	}
	return m, nil
}
