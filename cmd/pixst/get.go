package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naivary/pixst/client"
	"github.com/naivary/pixst/configuration"
)

var getCmd = &cobra.Command{
	Use:   "get Class:ID",
	Short: "Get an object",
	Long: `Print an object as JSON.
	For example:
	pixst get Dataset:50`,
	Args: cobra.ExactArgs(1),
	Run:  getObject,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func getObject(cmd *cobra.Command, args []string) {
	cfgFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		fmt.Println(err)
		return
	}
	cfg, err := configuration.Load(cfgFilePath)
	if err != nil {
		fmt.Println(err)
		return
	}
	c := client.New(cfg)
	obj, err := c.GetObject(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obj); err != nil {
		fmt.Println(err)
	}
}
