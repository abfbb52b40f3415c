package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., data_dir, decode_mode)"`
}

// Run executes the get command. It prints the effective value, including
// environment overrides.
func (cmd *ConfigGetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return unknownKey(cmd.Key, output.ExitNotFound)
	}

	fmt.Fprintln(fp.Out, value)
	return nil
}

func unknownKey(key string, code int) error {
	return (&output.CLIError{
		Message:  fmt.Sprintf("Unknown config key: %s", key),
		ExitCode: code,
	}).WithHint("Keys: " + strings.Join(config.Keys(), ", "))
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(file *ConfigFile, fp *FormatterProvider) error {
	if _, err := file.Get(cmd.Key); err != nil {
		return unknownKey(cmd.Key, output.ExitUsage)
	}

	if err := file.Set(cmd.Key, cmd.Value); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to set config: %v", err),
			ExitCode: output.ExitConfigError,
		}
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Set %s = %s", cmd.Key, cmd.Value))
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(file *ConfigFile, fp *FormatterProvider) error {
	if _, err := file.Get(cmd.Key); err != nil {
		return unknownKey(cmd.Key, output.ExitUsage)
	}

	if err := file.Unset(cmd.Key); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to unset config: %v", err),
			ExitCode: output.ExitConfigError,
		}
	}

	fp.Formatter.PrintStatus(fmt.Sprintf("Unset %s", cmd.Key))
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

// configItem is one row of config list
type configItem struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, file *ConfigFile, fp *FormatterProvider) error {
	keys := config.Keys()
	items := make([]configItem, 0, len(keys))
	for _, key := range keys {
		effective, _ := cfg.Get(key)
		stored, _ := file.Get(key)
		source := "file"
		switch {
		case effective == "":
			source = "default"
		case effective != stored:
			source = "env/flag"
		}
		items = append(items, configItem{Key: key, Value: effective, Source: source})
	}

	cols := []output.Column{
		{Name: "KEY", Key: "Key"},
		{Name: "VALUE", Key: "Value"},
		{Name: "SOURCE", Key: "Source"},
	}

	return fp.Formatter.PrintList(items, cols)
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(file *ConfigFile, fp *FormatterProvider) error {
	path := file.Path()

	fmt.Fprintln(fp.Out, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fp.Formatter.PrintHint("file does not exist yet, it is created on first write")
	}

	return nil
}
