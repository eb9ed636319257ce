package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/spell-planner/internal/entities"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/character"
)

var (
	charName        string
	charClass       string
	charLevel       int
	noSync          bool
	exportOut       string
	importOverwrite bool
	viewClass       string
	viewHide        []string
	viewMaxLevel    int
	viewOutlevelled bool
	confirmClear    bool
)

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars"},
	Short:   "Manage stored characters",
}

var listCharactersCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored characters",
	Args:  cobra.NoArgs,
	RunE:  runListCharacters,
}

var createCharacterCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a character and learn its spells",
	Args:  cobra.NoArgs,
	RunE:  runCreateCharacter,
}

var showCharacterCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a character as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCharacter,
}

var updateCharacterCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a character's name, class or level and resync its spells",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdateCharacter,
}

var syncCharacterCmd = &cobra.Command{
	Use:   "sync [id]",
	Short: "Refresh a character's spells from the class catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncCharacter,
}

var levelUpCmd = &cobra.Command{
	Use:   "level-up [id]",
	Short: "Raise a character one level",
	Args:  cobra.ExactArgs(1),
	RunE:  runLevelUp,
}

var setQualityCmd = &cobra.Command{
	Use:   "set-quality [id] [spell] [quality]",
	Short: "Set the quality a spell is trained to",
	Args:  cobra.ExactArgs(3),
	RunE:  runSetQuality,
}

var qualityCmd = &cobra.Command{
	Use:   "quality [id] [spell]",
	Short: "Print the quality of a spell",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuality,
}

var noQualityCmd = &cobra.Command{
	Use:   "no-quality [id]",
	Short: "Set every spell without quality tiers to none",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoQuality,
}

var deleteCharacterCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a character",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteCharacter,
}

var exportCharacterCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Write a character export document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportCharacter,
}

var importCharacterCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a character export document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportCharacter,
}

var viewCharacterCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Show the class spell lines with the character's qualities",
	Args:  cobra.ExactArgs(1),
	RunE:  runViewCharacter,
}

var clearCharactersCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored character",
	Args:  cobra.NoArgs,
	RunE:  runClearCharacters,
}

func init() {
	createCharacterCmd.Flags().StringVar(&charName, "name", "", "Character name")
	createCharacterCmd.Flags().StringVar(&charClass, "class", "", "Character class")
	createCharacterCmd.Flags().IntVar(&charLevel, "level", 1, "Character level")
	createCharacterCmd.Flags().BoolVar(&noSync, "no-sync", false, "Skip learning spells after creation")
	_ = createCharacterCmd.MarkFlagRequired("name")
	_ = createCharacterCmd.MarkFlagRequired("class")

	updateCharacterCmd.Flags().StringVar(&charName, "name", "", "New name")
	updateCharacterCmd.Flags().StringVar(&charClass, "class", "", "New class")
	updateCharacterCmd.Flags().IntVar(&charLevel, "level", 0, "New level")

	exportCharacterCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, stdout when empty")
	importCharacterCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace a character with the same name")

	viewCharacterCmd.Flags().StringVar(&viewClass, "class", "", "Class to view, defaults to the character's class")
	viewCharacterCmd.Flags().StringSliceVar(&viewHide, "hide", nil, "Qualities to hide")
	viewCharacterCmd.Flags().IntVar(&viewMaxLevel, "max-level", character.DefaultViewMaxLevel, "Hide spells above this level, 0 shows all")
	viewCharacterCmd.Flags().BoolVar(&viewOutlevelled, "hide-outlevelled", false, "Hide spells the character has outgrown")

	clearCharactersCmd.Flags().BoolVar(&confirmClear, "yes", false, "Confirm deleting every character")

	charactersCmd.AddCommand(listCharactersCmd)
	charactersCmd.AddCommand(createCharacterCmd)
	charactersCmd.AddCommand(showCharacterCmd)
	charactersCmd.AddCommand(updateCharacterCmd)
	charactersCmd.AddCommand(syncCharacterCmd)
	charactersCmd.AddCommand(levelUpCmd)
	charactersCmd.AddCommand(setQualityCmd)
	charactersCmd.AddCommand(qualityCmd)
	charactersCmd.AddCommand(noQualityCmd)
	charactersCmd.AddCommand(deleteCharacterCmd)
	charactersCmd.AddCommand(exportCharacterCmd)
	charactersCmd.AddCommand(importCharacterCmd)
	charactersCmd.AddCommand(viewCharacterCmd)
	charactersCmd.AddCommand(clearCharactersCmd)
}

func runListCharacters(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.List(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCLASS\tLEVEL\tSPELLS\tUPDATED")
		for _, c := range out.Characters {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				c.ID, c.Name, c.Class, c.Level, len(c.Spells), c.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	})
}

func runCreateCharacter(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.Create(ctx, &character.CreateInput{
			Name:       charName,
			Class:      charClass,
			Level:      charLevel,
			SyncSpells: !noSync,
		})
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, out.Character)
	})
}

func runShowCharacter(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.Get(ctx, &character.GetInput{ID: args[0]})
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, out.Character)
	})
}

func runUpdateCharacter(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		current, err := a.characters.Get(ctx, &character.GetInput{ID: args[0]})
		if err != nil {
			return err
		}

		input := &character.UpdateCharacterInput{
			ID:    args[0],
			Name:  current.Character.Name,
			Class: current.Character.Class,
			Level: current.Character.Level,
		}
		if cmd.Flags().Changed("name") {
			input.Name = charName
		}
		if cmd.Flags().Changed("class") {
			input.Class = charClass
		}
		if cmd.Flags().Changed("level") {
			input.Level = charLevel
		}

		out, err := a.characters.UpdateCharacter(ctx, input)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, out.Character)
	})
}

func runSyncCharacter(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.SyncSpells(ctx, &character.SyncSpellsInput{ID: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("%s knows %d spells\n", out.Character.Name, len(out.Character.Spells))
		return nil
	})
}

func runLevelUp(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.LevelUp(ctx, &character.LevelUpInput{ID: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now level %d and knows %d spells\n",
			out.Character.Name, out.Character.Level, len(out.Character.Spells))
		return nil
	})
}

func runSetQuality(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.SetSpellQuality(ctx, &character.SetSpellQualityInput{
			ID:        args[0],
			SpellName: args[1],
			Quality:   args[2],
		})
		if err != nil {
			return err
		}
		if !out.Applied {
			fmt.Println("nothing changed")
			return nil
		}
		fmt.Printf("%s set to %s\n", args[1], strings.ToLower(args[2]))
		return nil
	})
}

func runQuality(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.QualityOf(ctx, &character.QualityOfInput{ID: args[0], SpellName: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", out.Quality.DisplayName, out.Quality.Name)
		return nil
	})
}

func runNoQuality(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.ApplyNoQualityDefaults(ctx, &character.ApplyNoQualityDefaultsInput{ID: args[0]})
		if err != nil {
			return err
		}
		fmt.Printf("%d spells set to %s\n", out.Changed, entities.QualityNone)
		return nil
	})
}

func runDeleteCharacter(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.Delete(ctx, &character.DeleteInput{ID: args[0]})
		if err != nil {
			return err
		}
		if !out.Deleted {
			fmt.Printf("character %s not found\n", args[0])
			return nil
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	})
}

func runExportCharacter(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.Export(ctx, &character.ExportInput{ID: args[0]})
		if err != nil {
			return err
		}
		if exportOut == "" {
			return printJSON(os.Stdout, out.Document)
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()

		if err := printJSON(f, out.Document); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}
		fmt.Printf("exported %s to %s\n", out.Document.Character.Name, exportOut)
		return nil
	})
}

func runImportCharacter(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var doc entities.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.Import(ctx, &character.ImportInput{
			Document:  &doc,
			Overwrite: importOverwrite,
		})
		if err != nil {
			return err
		}
		if out.ReplacedID != "" {
			fmt.Printf("replaced %s with %s\n", out.ReplacedID, out.Character.ID)
			return nil
		}
		fmt.Printf("imported %s as %s\n", out.Character.Name, out.Character.ID)
		return nil
	})
}

func runViewCharacter(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.characters.SpellView(ctx, &character.SpellViewInput{
			ClassName:       viewClass,
			CharacterID:     args[0],
			HiddenQualities: viewHide,
			MaxLevel:        viewMaxLevel,
			HideOutlevelled: viewOutlevelled,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tSPELL\tLINE\tQUALITY\tREPLACED AT")
		for _, row := range out.Rows {
			quality := ""
			if row.Quality != nil {
				quality = row.Quality.Name
			}
			replacedAt := ""
			if row.ReplacedAtLevel != nil {
				replacedAt = fmt.Sprintf("%d", *row.ReplacedAtLevel)
			}
			name := row.Name
			if row.Outlevelled {
				name += " *"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row.Level, name, row.Line, quality, replacedAt)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(out.NoneQualitySpells) > 0 {
			fmt.Printf("\nno quality: %s\n", strings.Join(out.NoneQualitySpells, ", "))
		}
		return nil
	})
}

func runClearCharacters(_ *cobra.Command, _ []string) error {
	if !confirmClear {
		return fmt.Errorf("refusing to delete every character without --yes")
	}
	return withApp(func(ctx context.Context, a *app) error {
		if err := a.characters.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("all characters deleted")
		return nil
	})
}
