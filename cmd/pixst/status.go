package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naivary/pixst/client"
	"github.com/naivary/pixst/configuration"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get the status of an operation",
	Long: `Receive the status of a duplication operation.
	For example:
	pixst status -i 1a11f892-e94b-47da-89d3-ceee985e0d8c`,
	Run: getStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("id", "i", "", "Id of the operation")
}

func getStatus(cmd *cobra.Command, args []string) {
	cfgFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		fmt.Println(err)
		return
	}
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		fmt.Println("You should specify an id")
		return
	}
	cfg, err := configuration.Load(cfgFilePath)
	if err != nil {
		fmt.Println(err)
		return
	}
	c := client.New(cfg)
	op, err := c.Op(id)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(op.Status)
	if op.Error != "" {
		fmt.Println(op.Error)
	}
}
