package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
	"github.com/GreedyA1/obsidian-family-tree/internal/ui"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage person notes",
}

var personAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new person note",
	Long: `Create a person note in the people folder.

The note name is derived from the full name; if a note with that name
already exists, a numeric suffix is appended. The person id is the
slugified full name, so two people with the same name share an id and
should be disambiguated in their name fields.`,
	Run: func(cmd *cobra.Command, args []string) {
		first, _ := cmd.Flags().GetString("first")
		last, _ := cmd.Flags().GetString("last")
		gender, _ := cmd.Flags().GetString("gender")

		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}

		person, err := e.mgr.CreatePerson(first, last, tree.ParseGender(gender))
		if err != nil {
			fatalf("failed to create person: %v", err)
		}

		fmt.Println(ui.FormatSuccess("Created " + person.FullName()))
		fmt.Printf("   ID: %s\n", person.ID)
		fmt.Printf("   Note: %s\n", person.NotePath)
	},
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all persons in the vault",
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		persons := e.store.Persons()
		if len(persons) == 0 {
			fmt.Println("No persons found.")
			return
		}
		for _, p := range persons {
			fmt.Printf("%s  %s\n", ui.FormatPerson(p.ID, p.FullName()), ui.DimStyle.Render(p.NotePath))
		}
	},
}

var personRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a person's note",
	Long: `Delete the backing note of the person with the given id.

Relationship stubs in other notes that point at the deleted person become
dangling; they are kept in place and resolve again if the note comes back.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		person, ok := e.store.Person(args[0])
		if !ok {
			fatalf("person not found: %s", args[0])
		}
		if err := e.mgr.DeletePerson(person); err != nil {
			fatalf("failed to delete note: %v", err)
		}

		fmt.Println(ui.FormatSuccess("Deleted " + person.FullName() + " (" + person.NotePath + ")"))
	},
}

func init() {
	personAddCmd.Flags().String("first", "", "First name")
	personAddCmd.Flags().String("last", "", "Surname")
	personAddCmd.Flags().String("gender", "unknown", "Gender (male, female, other, unknown)")

	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personRmCmd)
	rootCmd.AddCommand(personCmd)
}
