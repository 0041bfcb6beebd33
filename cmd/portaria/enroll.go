package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/portaria/internal/audit"
	"github.com/saturnino-fabrica-de-software/portaria/internal/face"
	"github.com/saturnino-fabrica-de-software/portaria/internal/people"
	"github.com/saturnino-fabrica-de-software/portaria/internal/provider"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Register people with the face recogniser",
	Long: `Register one person from image files, or everyone listed in a people
manifest (the same YAML file PEOPLE_FILE points to).

Example:
  portaria enroll --id emp-7 --name "Aman" --image aman1.jpg --image aman2.jpg
  portaria enroll --manifest people.yaml
  portaria enroll --manifest people.yaml --reset`,
	Args: cobra.NoArgs,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	enrollCmd.Flags().String("id", "", "Person id returned by the recogniser on a match")
	enrollCmd.Flags().String("name", "", "Display name")
	enrollCmd.Flags().StringSlice("image", nil, "Face image file (repeatable)")
	enrollCmd.Flags().String("manifest", "", "YAML file listing people and their images")
	enrollCmd.Flags().Bool("reset", false, "Drop every face already in the collection before enrolling")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	images, _ := cmd.Flags().GetStringSlice("image")
	manifest, _ := cmd.Flags().GetString("manifest")
	reset, _ := cmd.Flags().GetBool("reset")

	if (manifest == "") == (id == "") {
		return errors.New("use either --manifest or --id with --image")
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		directory *people.Directory
		persons   []provider.Person
	)

	if manifest != "" {
		directory, err = people.Load(manifest)
		if err != nil {
			return err
		}
		for _, e := range directory.Entries() {
			p, err := directory.Person(e)
			if err != nil {
				return err
			}
			persons = append(persons, p)
		}
	} else {
		if len(images) == 0 {
			return errors.New("--image is required with --id")
		}
		if name == "" {
			name = id
		}
		p := provider.Person{ID: id, Name: name}
		for _, path := range images {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			p.Images = append(p.Images, data)
		}
		persons = append(persons, p)
		directory = people.New([]people.Entry{{ID: id, Name: name, Images: images}})
	}

	recognizer, err := face.NewRecognizer(ctx, cfg, directory, audit.NewSlogLogger(logger))
	if err != nil {
		return err
	}

	gallery, hasGallery := recognizer.(provider.Gallery)
	if reset {
		if !hasGallery {
			return fmt.Errorf("%s does not support --reset", recognizer.Name())
		}
		if err := gallery.Reset(ctx); err != nil {
			return fmt.Errorf("reset collection: %w", err)
		}
		color.New(color.FgYellow).Println("Collection cleared")
	}

	fmt.Printf("Enrolling %d people with %s\n\n", len(persons), recognizer.Name())

	bar := progressbar.NewOptions(len(persons),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	type failure struct {
		id  string
		err error
	}
	var (
		indexed  int
		failures []failure
	)
	for _, p := range persons {
		n, err := recognizer.Enroll(ctx, p)
		if err != nil {
			failures = append(failures, failure{id: p.ID, err: err})
		}
		indexed += n
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Printf("%s %d people, %d images indexed\n", green.Sprint("✓"), len(persons)-len(failures), indexed)
	for _, f := range failures {
		fmt.Printf("%s %s: %v\n", red.Sprint("✗"), f.id, f.err)
	}
	if hasGallery {
		if total, err := gallery.FaceCount(ctx); err == nil {
			fmt.Printf("  collection now holds %d faces\n", total)
		} else {
			logger.Warn("could not count collection faces", "error", err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d people could not be enrolled", len(failures), len(persons))
	}
	return nil
}
