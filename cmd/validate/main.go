package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/game"
	"github.com/jwebster45206/quest-engine/pkg/validate"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <game.json|game.yaml>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &GameValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		if len(validator.warnings) > 0 {
			fmt.Printf("Warnings in %s:\n%s\n", filename, strings.Join(validator.warnings, "\n"))
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type GameValidator struct {
	errors   []string
	warnings []string
}

func (v *GameValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(baseName))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("game file must have .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidGameFilename(nameWithoutExt) {
		return fmt.Errorf("game filename '%s' must be lowercase snake_case (e.g., my_game.json, not my-game.json or MyGame.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.warnings = nil

	if ext != ".json" {
		if data, err = storage.YAMLToJSON(data); err != nil {
			return fmt.Errorf("file %s contains invalid YAML: %w", filename, err)
		}
	}

	issues, err := validate.Bytes(data)
	if err != nil {
		return fmt.Errorf("file %s could not be checked: %w", filename, err)
	}
	for _, issue := range issues {
		if issue.Severity == validate.SeverityError {
			v.addError(issue.String())
		} else {
			v.addWarning(issue.String())
		}
	}

	if validate.Errors(issues) == 0 {
		doc, err := storage.ParseDocument(data, false)
		if err != nil {
			return fmt.Errorf("file %s failed to decode: %w", filename, err)
		}
		v.validateIDs(doc)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateIDs checks naming conventions the schema does not enforce.
func (v *GameValidator) validateIDs(doc *game.Document) {
	doc.WalkLocations(func(loc *game.Location, _ int) {
		v.validateIDFormat("location ID", loc.ID)
	})
	for _, id := range doc.AllEntityIDs() {
		v.validateIDFormat("entity ID", id)
	}
	for _, q := range doc.Quests {
		v.validateIDFormat("quest ID", q.ID)
		for _, s := range q.Steps {
			v.validateIDFormat("step ID", s.ID)
		}
	}
	for _, d := range doc.Dialogues {
		v.validateIDFormat("dialogue ID", d.ID)
	}
}

func (v *GameValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addWarning(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *GameValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *GameValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidGameFilename(name string) bool {
	// Allow 'x.' prefix for experimental games
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
