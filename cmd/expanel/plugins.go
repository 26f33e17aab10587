package main

import (
	"fmt"

	"github.com/expanel/expanel/plugin"
	"github.com/spf13/cobra"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List the registered plugins",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range plugin.RegisteredPlugins() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}
