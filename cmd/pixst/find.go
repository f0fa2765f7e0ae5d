package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naivary/pixst/client"
	"github.com/naivary/pixst/configuration"
	"github.com/naivary/pixst/models"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find your objects by class and metadata",
	Long: `Find your objects, filtered by class and metadata pairs.
	For example:
	pixst find -C Dataset -m stain=dapi
	will print all of your datasets stained with dapi.`,
	Run: find,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringP("class", "C", "", "Kind of object to find, e.g. Dataset")
	findCmd.Flags().StringArrayP("meta", "m", nil, "Metadata pair to match, e.g. stain=dapi")
	findCmd.Flags().Bool("or", false, "Match any of the metadata pairs instead of all")
}

func find(cmd *cobra.Command, args []string) {
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
	class, _ := cmd.Flags().GetString("class")
	pairs, _ := cmd.Flags().GetStringArray("meta")
	or, _ := cmd.Flags().GetBool("or")

	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			fmt.Printf("invalid metadata pair %q, expected key=value\n", pair)
			return
		}
		meta[k] = v
	}
	c := client.New(cfg)
	objs, err := c.Query(models.QueryRequest{Class: class, Meta: meta, Or: or})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, obj := range objs {
		fmt.Printf("%s:%d %s\n", obj.Class, obj.ID, obj.Name)
	}
}
