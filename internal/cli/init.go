package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
	"github.com/lingo-build/lingo/pkg/store"
	"github.com/lingo-build/lingo/pkg/templates"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var language, platform string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new project in the current directory",
		Long: `Init writes a Lingo.toml for a new project in the current directory.

Native projects get a hello-world main reactor in src/Main.lf. Zephyr and
RP2040 projects are set up from their template repositories, and every main
reactor found in the template becomes an app.`,
		Example: `  lingo init
  lingo init --language cpp
  lingo init --platform zephyr`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := manifest.ParseTargetLanguage(language)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "--language")
			}
			plat, err := manifest.ParsePlatform(platform)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "--platform")
			}
			dir, err := c.getwd()
			if err != nil {
				return err
			}
			if err := c.initProject(cmd.Context(), dir, target, plat); err != nil {
				return err
			}
			printSuccess(c.Out, "Created %s", manifest.FileName)
			printFile(c.Out, filepath.Join(dir, manifest.FileName))
			printNextStep(c.Out, "Build it", "lingo build")
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "c", "target language: "+strings.Join(targetNames(), ", "))
	cmd.Flags().StringVarP(&platform, "platform", "p", "native", "deployment platform: native, zephyr, rp2040")
	return cmd
}

// initProject sets up sources for platform in dir and writes the manifest.
func (c *CLI) initProject(ctx context.Context, dir string, target manifest.TargetLanguage, platform manifest.Platform) error {
	manifestPath := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return errors.New(errors.ErrCodeInvalidProjectLocation, "%s already contains %s", dir, manifest.FileName)
	}
	if !manifest.IsValidProjectLocation(dir) {
		return errors.New(errors.ErrCodeInvalidProjectLocation,
			"%s already contains a %s directory, a %s directory or a git checkout", dir, manifest.DefaultSourceDir, manifest.DefaultLibraryLocation)
	}

	if url, ok := templates.RepositoryFor(platform); ok {
		if err := c.cloneTemplate(ctx, url, dir, platform == manifest.Zephyr); err != nil {
			return err
		}
	} else if err := writeHello(dir, target); err != nil {
		return err
	}

	var reactors []manifest.MainReactor
	if platform != manifest.Native {
		var err error
		reactors, err = manifest.FindMainReactors(filepath.Join(dir, manifest.DefaultSourceDir))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	f := manifest.NewForInit(filepath.Base(dir), target, platform, reactors)
	return f.Write(manifestPath)
}

func writeHello(dir string, target manifest.TargetLanguage) error {
	code, err := templates.Hello(target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "init")
	}
	main := filepath.Join(dir, filepath.FromSlash(manifest.DefaultMain))
	if err := os.MkdirAll(filepath.Dir(main), 0o755); err != nil {
		return err
	}
	return os.WriteFile(main, code, 0o644)
}

// cloneTemplate copies the template repository at url into dir. With strip
// set, the template's git metadata is dropped.
func (c *CLI) cloneTemplate(ctx context.Context, url, dir string, strip bool) error {
	tmp, err := os.MkdirTemp("", "lingo-template-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	printInfo(c.Out, "Cloning %s", url)
	checkout := filepath.Join(tmp, "template")
	if _, err := c.clone(ctx, url, checkout, nil); err != nil {
		return errors.Wrap(errors.ErrCodeFetchFailed, err, "clone template %s", url)
	}
	if strip {
		for _, p := range []string{".git", ".gitignore"} {
			if err := os.RemoveAll(filepath.Join(checkout, p)); err != nil {
				return err
			}
		}
	}
	if err := store.CopyTree(checkout, dir); err != nil {
		return fmt.Errorf("copy template: %w", err)
	}
	return nil
}

func targetNames() []string {
	names := make([]string, len(manifest.TargetLanguages))
	for i, t := range manifest.TargetLanguages {
		names[i] = strings.ToLower(string(t))
	}
	return names
}
