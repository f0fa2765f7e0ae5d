package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naivary/pixst/client"
	"github.com/naivary/pixst/configuration"
	"github.com/naivary/pixst/models"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an image file",
	Long: `Import an image file into the store. The payload is stored
content-addressed, so importing the same bytes twice shares them.
	For example:
	pixst import -p ./cells.png -d Dataset:3
	will import cells.png and link it into Dataset:3.`,
	Run: importImage,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("path", "p", "", "Path to the image file")
	importCmd.Flags().StringP("dataset", "d", "", "Dataset to link the image into, e.g. Dataset:3")
	importCmd.Flags().BoolP("quiet", "q", false, "The process information should not be showed")
}

func importImage(cmd *cobra.Command, args []string) {
	cfgFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		fmt.Println(err)
		return
	}
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		fmt.Println("You should specify a path")
		return
	}
	dataset, _ := cmd.Flags().GetString("dataset")
	quiet, _ := cmd.Flags().GetBool("quiet")
	cfg, err := configuration.Load(cfgFilePath)
	if err != nil {
		fmt.Println(err)
		return
	}
	c := client.New(cfg)
	obj, err := c.Import(path, quiet)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Imported %s:%d\n", obj.Class, obj.ID)
	if dataset == "" {
		return
	}
	link, err := c.CreateObject(&models.Object{
		Class: "DatasetImageLink",
		Owner: cfg.Owner,
		Group: cfg.Group,
		From:  dataset,
		To:    fmt.Sprintf("%s:%d", obj.Class, obj.ID),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Linked via %s:%d\n", link.Class, link.ID)
}
