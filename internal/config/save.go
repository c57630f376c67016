package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/observer/internal/log"
)

// SaveObservers replaces the observers list in the config file.
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree instead of re-marshaling a struct.
func SaveObservers(configPath string, kinds []string) error {
	if err := ValidateObservers(kinds); err != nil {
		return err
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := setMappingKey(&doc, "observers", buildKindsNode(kinds)); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to save observers", err, "path", configPath)
		return fmt.Errorf("writing config: %w", err)
	}

	log.Info(log.CatConfig, "Saved observers", "path", configPath, "observers", kinds)
	return nil
}

// setMappingKey sets key to value in the document's root mapping, creating
// the document or appending the key when missing.
func setMappingKey(doc *yaml.Node, key string, value *yaml.Node) error {
	if doc.Kind == 0 {
		*doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fmt.Errorf("parsing config: unexpected document structure")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			// Keep comments attached to the old value.
			value.HeadComment = root.Content[i+1].HeadComment
			value.LineComment = root.Content[i+1].LineComment
			root.Content[i+1] = value
			return nil
		}
	}

	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	return nil
}

func buildKindsNode(kinds []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, kind := range kinds {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kind})
	}
	return seq
}
