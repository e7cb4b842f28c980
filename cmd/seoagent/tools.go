package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// runTool executes a registry tool and prints its text result.
func (a *app) runTool(cmd *cobra.Command, name string, args map[string]any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return a.callTool(cmd, name, string(raw))
}

func (a *app) callTool(cmd *cobra.Command, name, argsJSON string) error {
	ctx := contextOf(cmd)
	reg, err := a.registry(ctx)
	if err != nil {
		return err
	}
	out, err := reg.Call(ctx, name, argsJSON)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func newToolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tool [name] [json-args]",
		Short: "Call a named tool with JSON arguments",
		Long: `Tool calls any registered tool exactly as an agent would.
Arguments are a JSON object; pass "-" to read them from stdin.`,
		Example: `  seoagent tool get_articles '{"status": "draft", "limit": 5}'`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			argsJSON := ""
			if len(args) == 2 {
				argsJSON = args[1]
			}
			if argsJSON == "-" {
				data, err := readAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				argsJSON = string(data)
			}
			return a.callTool(cmd, args[0], argsJSON)
		},
	}
}

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(contextOf(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range reg.All() {
				params := make([]string, 0, len(t.Schema.Properties))
				for name := range t.Schema.Properties {
					params = append(params, name)
				}
				fmt.Fprintf(out, "%-22s [%s] %s\n", t.Name, t.Category, t.Description)
				if len(params) > 0 {
					fmt.Fprintf(out, "%-22s params: %s\n", "", strings.Join(sortStrings(params), ", "))
				}
			}
			return nil
		},
	}
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}
