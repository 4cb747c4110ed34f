package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toaststack/internal/config"
	"github.com/jmylchreest/toaststack/internal/layout"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect layout templates",
	Long: `Layout templates decide which elements a notification window has and
in which order. Set template_path in the config file to a file path, to the
name of a file in the templates directory, or to builtin:<name>.`,
}

var templatePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the user templates directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.TemplatesDir())
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range layout.NewLoader(config.TemplatesDir()).List() {
			fmt.Println(name)
		}
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show [PATH]",
	Short: "Print the element tree of a template",
	Long: `Print the element tree of a template. Without an argument the configured
template is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.TemplatePath
		if len(args) == 1 {
			path = args[0]
		}
		l, err := layout.NewLoader(config.TemplatesDir()).Resolve(path)
		if err != nil {
			return err
		}
		fmt.Println(l.Source)
		printElements(l.Elements, 1)
		return nil
	},
}

func printElements(elems []layout.Element, depth int) {
	for _, e := range elems {
		line := strings.Repeat("  ", depth) + string(e.Type)
		if len(e.Attributes) > 0 {
			keys := make([]string, 0, len(e.Attributes))
			for k := range e.Attributes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				line += fmt.Sprintf(" %s=%q", k, e.Attributes[k])
			}
		}
		fmt.Println(line)
		printElements(e.Children, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(templatePathCmd, templateListCmd, templateShowCmd)
}
