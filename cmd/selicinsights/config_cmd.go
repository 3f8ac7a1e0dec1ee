package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sawpanic/selicinsights/internal/secrets"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with credentials masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var doc yaml.Node
			if err := doc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			maskSecrets(&doc)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&doc); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			return enc.Close()
		},
	}
}

// maskSecrets replaces values under sensitive keys and scrubs credentials
// embedded in any other string.
func maskSecrets(n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		for _, c := range n.Content {
			maskSecrets(c)
		}
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			maskSecrets(val)
			continue
		}
		if val.Value != "" && secrets.IsSensitiveKey(key.Value) {
			val.Value = "[REDACTED]"
			val.Tag = "!!str"
			continue
		}
		val.Value = secrets.Redact(val.Value)
	}
}
