package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GreedyA1/obsidian-family-tree/internal/identity"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
	"github.com/GreedyA1/obsidian-family-tree/internal/ui"
)

var relCmd = &cobra.Command{
	Use:   "rel",
	Short: "Manage relationships",
}

var relAddCmd = &cobra.Command{
	Use:   "add <type> <person1-id> <person2-id>",
	Short: "Record a relationship between two persons",
	Long: `Record a relationship, writing one stub into each person's note.

Types: spouse, parent, sibling. For "parent", person1 is the parent.
Spouse and sibling are symmetric; the order of the two ids does not
matter, the canonical form orders them internally.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		relType := tree.RelationshipType(args[0])
		if !relType.Valid() {
			fatalf("unknown relationship type %q (spouse, parent, sibling)", args[0])
		}
		if args[1] == args[2] {
			fatalf("cannot relate a person to themselves")
		}

		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		person1ID, person2ID := args[1], args[2]
		if relType.Symmetric() {
			person1ID, person2ID = identity.OrderSymmetric(person1ID, person2ID)
		}

		person1, ok := e.store.Person(person1ID)
		if !ok {
			fatalf("person not found: %s", person1ID)
		}
		person2, ok := e.store.Person(person2ID)
		if !ok {
			fatalf("person not found: %s", person2ID)
		}

		rel := tree.Relationship{
			ID:         identity.RelationshipID(string(relType), person1ID, person2ID),
			Type:       relType,
			Person1ID:  person1ID,
			Person2ID:  person2ID,
			SourceFile: person1.NotePath,
		}
		if err := e.mgr.SaveRelationship(rel, person1, person2); err != nil {
			fatalf("failed to save relationship: %v", err)
		}

		fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s %s %s",
			person1.FullName(), ui.RelationStyle.Render(string(relType)), person2.FullName())))
	},
}

var relRmCmd = &cobra.Command{
	Use:   "rm <relationship-id>",
	Short: "Remove a relationship from both notes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		var rel tree.Relationship
		found := false
		for _, r := range e.store.Relationships() {
			if r.ID == args[0] {
				rel = r
				found = true
				break
			}
		}
		if !found {
			fatalf("relationship not found: %s", args[0])
		}

		person1, ok1 := e.store.Person(rel.Person1ID)
		person2, ok2 := e.store.Person(rel.Person2ID)
		if !ok1 || !ok2 {
			fatalf("relationship endpoints missing from the graph")
		}

		if err := e.mgr.RemoveRelationship(rel, person1, person2); err != nil {
			fatalf("failed to remove relationship: %v", err)
		}

		fmt.Println(ui.FormatSuccess("Removed " + rel.ID))
	},
}

var relListCmd = &cobra.Command{
	Use:   "list [person-id]",
	Short: "List relationships, optionally for one person",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		count := 0
		for _, r := range e.store.Relationships() {
			if len(args) == 1 && r.Person1ID != args[0] && r.Person2ID != args[0] {
				continue
			}
			fmt.Printf("%s  %s %s %s\n",
				ui.DimStyle.Render(r.ID),
				r.Person1ID, ui.RelationStyle.Render(string(r.Type)), r.Person2ID)
			count++
		}
		if count == 0 {
			fmt.Println("No relationships found.")
		}
	},
}

func init() {
	relCmd.AddCommand(relAddCmd)
	relCmd.AddCommand(relRmCmd)
	relCmd.AddCommand(relListCmd)
	rootCmd.AddCommand(relCmd)
}
