package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/relay/internal/driver"
	"github.com/zjrosen/relay/internal/log"
)

// SaveTrafficPhases replaces traffic.phases in the config file, creating the
// file or the traffic section when missing. Comments and formatting in other
// sections are preserved by editing the yaml.Node tree.
func SaveTrafficPhases(configPath string, phases []driver.Phase) error {
	_, updated, err := PatchTrafficPhases(configPath, phases)
	if err != nil {
		return err
	}
	if err := writeAtomic(configPath, updated); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved traffic phases", "path", configPath, "phases", len(phases))
	return nil
}

// PatchTrafficPhases returns the current contents of the config file and the
// contents SaveTrafficPhases would write. Nothing is written. A missing file
// reads as empty.
func PatchTrafficPhases(configPath string, phases []driver.Phase) (current, updated []byte, err error) {
	for i, p := range phases {
		if err := p.Validate(); err != nil {
			return nil, nil, fmt.Errorf("phase %d: %w", i, err)
		}
	}

	current, err = os.ReadFile(configPath) //nolint:gosec // G304: config path chosen by the user
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(current) > 0 {
		if err := yaml.Unmarshal(current, &doc); err != nil {
			return nil, nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("parsing config: top level is not a mapping")
	}

	traffic := mappingChild(doc.Content[0], "traffic")
	setMappingValue(traffic, "phases", buildPhasesNode(phases))

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return nil, nil, fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	return current, buf.Bytes(), nil
}

// mappingChild returns the mapping stored under key in parent, creating it
// (or replacing a non-mapping value) as needed.
func mappingChild(parent *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(parent.Content)-1; i += 2 {
		if parent.Content[i].Value == key {
			child := parent.Content[i+1]
			if child.Kind != yaml.MappingNode {
				child = &yaml.Node{Kind: yaml.MappingNode}
				parent.Content[i+1] = child
			}
			return child
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	parent.Content = append(parent.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
	return child
}

func setMappingValue(parent *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(parent.Content)-1; i += 2 {
		if parent.Content[i].Value == key {
			parent.Content[i+1] = value
			return
		}
	}
	parent.Content = append(parent.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
}

func buildPhasesNode(phases []driver.Phase) *yaml.Node {
	node := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Content: make([]*yaml.Node, 0, len(phases)),
	}
	for _, p := range phases {
		node.Content = append(node.Content, &yaml.Node{
			Kind: yaml.MappingNode,
			Content: []*yaml.Node{
				{Kind: yaml.ScalarNode, Value: "state"},
				{Kind: yaml.ScalarNode, Value: string(p.State)},
				{Kind: yaml.ScalarNode, Value: "events"},
				{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(p.Events)},
			},
		})
	}
	return node
}

// writeAtomic writes data to a temp file next to path, then renames it.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".relay.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
