package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naivary/pixst/client"
	"github.com/naivary/pixst/configuration"
	"github.com/naivary/pixst/graph"
	"github.com/naivary/pixst/models"
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate Class:ID [Class:ID ...]",
	Short: "Duplicate object graphs",
	Long: `Duplicate entire graphs of data based on the ID of the top-node.
Binary pixel data is shared between the original and the duplicate,
never copied.

Examples:

    # Duplicate a dataset
    pixst duplicate Dataset:50
    # Do the same reporting all the new duplicate objects
    pixst duplicate Dataset:50 --report

    # Do a dry run of a duplicate reporting the outcome
    # if the duplicate had been run
    pixst duplicate Dataset:53 --dry-run --report

    # Duplicate a project with its datasets but not their images
    pixst duplicate Project:15 --ignore-classes=DatasetImageLink
    # Duplicate a project with the original images linked from its datasets
    pixst duplicate Project:15 --reference-classes=Image
    # Duplicate a project, linking to the original annotations except
    # for duplicating the comments and ratings
    pixst duplicate Project:15 --reference-classes=Annotation --duplicate-classes=CommentAnnotation,LongAnnotation

Group permissions can prevent simply referencing an Image or
Annotation. However, note that ignoring a linked-to class does not
suffice, one must ignore the link itself. For instance, ignore
ImageAnnotationLink rather than the target Annotation. This is not an
issue for classes such as Roi which can be ignored directly because
they have no separate link class.`,
	Args: cobra.MinimumNArgs(1),
	Run:  duplicate,
}

func init() {
	rootCmd.AddCommand(duplicateCmd)
	duplicateCmd.Flags().String("duplicate-classes", "", "Kinds of object to duplicate")
	duplicateCmd.Flags().String("reference-classes", "", "Kinds of object to link to instead of duplicate")
	duplicateCmd.Flags().String("ignore-classes", "", "Kinds of object to ignore, neither linking to nor duplicating")
	duplicateCmd.Flags().Bool("dry-run", false, "Report the outcome without duplicating anything")
	duplicateCmd.Flags().Bool("report", false, "Report all the new duplicate objects")
}

func duplicate(cmd *cobra.Command, args []string) {
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
	duplicateClasses, _ := cmd.Flags().GetString("duplicate-classes")
	referenceClasses, _ := cmd.Flags().GetString("reference-classes")
	ignoreClasses, _ := cmd.Flags().GetString("ignore-classes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	report, _ := cmd.Flags().GetBool("report")

	c := client.New(cfg)
	op, err := c.Duplicate(models.DuplicateRequest{
		Targets:          args,
		DuplicateClasses: duplicateClasses,
		ReferenceClasses: referenceClasses,
		IgnoreClasses:    ignoreClasses,
		DryRun:           dryRun,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	op, err = c.Wait(op.ID)
	if err != nil {
		fmt.Println(err)
		return
	}
	if dryRun {
		fmt.Println("Dry run performed")
	} else {
		fmt.Println("Duplication finished")
	}
	if report && op.Response != nil {
		res, err := graph.ResultFromModel(op.Response)
		if err != nil {
			fmt.Println(err)
			return
		}
		if err := res.WriteReport(os.Stdout); err != nil {
			fmt.Println(err)
		}
	}
}
