package cli

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/semmy-space/auth/internal/output"
)

// SchemaCmd prints the command tree as JSON for scripts and shell
// integrations.
type SchemaCmd struct {
	Command string `arg:"" optional:"" help:"Command path to describe (e.g., 'config set')"`
}

// SchemaNode describes one command.
type SchemaNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path,omitempty"`
	Help     string        `json:"help,omitempty"`
	Aliases  []string      `json:"aliases,omitempty"`
	Flags    []*SchemaFlag `json:"flags,omitempty"`
	Args     []*SchemaArg  `json:"args,omitempty"`
	Children []*SchemaNode `json:"commands,omitempty"`
	// ExitCodes is only set on the root.
	ExitCodes []SchemaExit `json:"exit_codes,omitempty"`
}

// SchemaFlag describes a flag.
type SchemaFlag struct {
	Name    string   `json:"name"`
	Short   string   `json:"short,omitempty"`
	Help    string   `json:"help,omitempty"`
	Kind    string   `json:"kind"`
	Default string   `json:"default,omitempty"`
	Enum    []string `json:"enum,omitempty"`
	Env     []string `json:"env,omitempty"`
}

// SchemaArg describes a positional argument.
type SchemaArg struct {
	Name      string `json:"name"`
	Help      string `json:"help,omitempty"`
	Required  bool   `json:"required,omitempty"`
	Predictor string `json:"completes,omitempty"`
}

// SchemaExit documents a process exit code.
type SchemaExit struct {
	Code    int    `json:"code"`
	Meaning string `json:"meaning"`
}

var exitCodes = []SchemaExit{
	{output.ExitOK, "success"},
	{output.ExitGeneral, "failure, rejected code or cancelled prompt"},
	{output.ExitUsage, "invalid arguments"},
	{output.ExitNotFound, "no such entry"},
	{output.ExitConflict, "name already in use"},
	{output.ExitInvalidSecret, "secret cannot be decoded"},
	{output.ExitConfigError, "invalid configuration"},
	{output.ExitIO, "entries could not be read or written"},
}

// Run executes the schema command
func (cmd *SchemaCmd) Run(ctx *kong.Context) error {
	root := ctx.Model.Node
	node := root
	if cmd.Command != "" {
		var ok bool
		if node, ok = lookupCommand(root, strings.Fields(cmd.Command)); !ok {
			return (&output.CLIError{
				Message:  fmt.Sprintf("Unknown command: %s", cmd.Command),
				ExitCode: output.ExitUsage,
			}).WithHint("Run: auth schema")
		}
	}

	doc := describeCommand(node)
	if node == root {
		doc.ExitCodes = exitCodes
	}

	enc := json.NewEncoder(ctx.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func describeCommand(node *kong.Node) *SchemaNode {
	doc := &SchemaNode{
		Name:    node.Name,
		Help:    node.Help,
		Aliases: node.Aliases,
	}
	if node.Parent != nil {
		doc.Path = node.FullPath()
	}

	for _, flag := range node.Flags {
		if flag.Hidden || flag.Name == "help" {
			continue
		}
		doc.Flags = append(doc.Flags, describeFlag(flag))
	}

	for _, arg := range node.Positional {
		a := &SchemaArg{Name: arg.Name, Help: arg.Help, Required: arg.Required}
		if arg.Tag != nil {
			a.Predictor = arg.Tag.Get("predictor")
		}
		doc.Args = append(doc.Args, a)
	}

	for _, child := range node.Children {
		if child.Hidden {
			continue
		}
		doc.Children = append(doc.Children, describeCommand(child))
	}
	return doc
}

func describeFlag(flag *kong.Flag) *SchemaFlag {
	f := &SchemaFlag{
		Name:    flag.Name,
		Help:    flag.Help,
		Kind:    "string",
		Default: flag.Default,
		Env:     flag.Envs,
	}
	if flag.Short != 0 {
		f.Short = string(flag.Short)
	}
	if flag.Enum != "" {
		f.Enum = strings.Split(flag.Enum, ",")
	}
	if flag.Value != nil && flag.Value.Target.IsValid() {
		f.Kind = kindOf(flag.Value.Target.Type())
	}
	return f
}

func kindOf(t reflect.Type) string {
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		return "duration"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	default:
		return "string"
	}
}

// lookupCommand follows path from root, matching names and aliases.
func lookupCommand(root *kong.Node, path []string) (*kong.Node, bool) {
	current := root
	for _, part := range path {
		idx := slices.IndexFunc(current.Children, func(child *kong.Node) bool {
			return child.Name == part || slices.Contains(child.Aliases, part)
		})
		if idx < 0 {
			return nil, false
		}
		current = current.Children[idx]
	}
	return current, true
}
