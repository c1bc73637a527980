package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agusx1211/notebake"
	"github.com/agusx1211/notebake/internal/config"
)

var vaultDir string
var profileName string
var includePatterns []string
var excludePatterns []string
var includeIgnored bool
var verbose bool

var includeLinks bool
var includeEmbeds bool
var bakeInList bool
var convertFileLinks bool

var toFile bool
var fileName string
var openResult bool
var printOutput bool
var copyOutput bool
var sshCopyOutput bool

func newLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig merges the .notebake files for the vault, then the flags the
// user actually set.
func loadConfig(cmd *cobra.Command, log *slog.Logger) (*config.Config, error) {
	paths := config.Paths(vaultDir)
	cfg, err := config.Load(profileName, paths...)
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		warnMissingProfile(paths, profileName, log)
	}

	flags := cmd.Flags()
	if flags.Changed("links") {
		cfg.Settings.IncludeLinks = includeLinks
	}
	if flags.Changed("embeds") {
		cfg.Settings.IncludeEmbeds = includeEmbeds
	}
	if flags.Changed("in-list") {
		cfg.Settings.BakeInList = bakeInList
	}
	if flags.Changed("file-links") {
		cfg.Settings.ConvertFileLinks = convertFileLinks
	}
	cfg.Include = append(cfg.Include, includePatterns...)
	cfg.Exclude = append(cfg.Exclude, excludePatterns...)
	return cfg, nil
}

func warnMissingProfile(paths []string, profile string, log *slog.Logger) {
	for _, path := range paths {
		f, err := config.Read(path)
		if err == nil && f.HasProfile(profile) {
			return
		}
	}
	log.Warn("profile not found, using defaults", "profile", profile)
}

func openBaker(cfg *config.Config, log *slog.Logger) (*notebake.Baker, error) {
	return notebake.Open(vaultDir, notebake.Options{
		Include:        cfg.Include,
		Exclude:        cfg.Exclude,
		IncludeIgnored: includeIgnored,
		Logger:         log,
	})
}

var rootCmd = &cobra.Command{
	Use:   "notebake [note]",
	Short: "Bake a note and everything it references into one document",
	Long: `notebake takes a note from a markdown vault and replaces every link
and embed that stands on its own line (or alone in a list item) with the
content it points to, recursively, until a single self-contained document
remains. Headings and ^block references narrow the included content.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(verbose, cmd.ErrOrStderr())
		cfg, err := loadConfig(cmd, log)
		if err != nil {
			return err
		}
		b, err := openBaker(cfg, log)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		if toFile || openResult {
			var opener notebake.Opener
			if openResult {
				opener = openFile
			}
			written, err := b.BakeAndOpen(ctx, args[0], fileName, cfg.Settings, opener)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Output written to: %s\n", filepath.Join(b.Root(), filepath.FromSlash(written)))
			return nil
		}

		mode, err := resolveOutputMode(cfg.Output, printOutput, copyOutput, sshCopyOutput)
		if err != nil {
			return err
		}
		baked, err := b.BakeToString(ctx, args[0], cfg.Settings)
		if err != nil {
			return err
		}
		return emit(cmd, mode, baked)
	},
}

func emit(cmd *cobra.Command, mode, baked string) error {
	switch mode {
	case config.OutputCopy:
		if err := copyToClipboard(baked); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied baked note to clipboard")
	case config.OutputSSHCopy:
		if err := copyToOSC52(baked); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Sent baked note to clipboard via OSC 52")
	default:
		fmt.Fprint(cmd.OutOrStdout(), baked)
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&vaultDir, "vault", ".", "Vault directory")
	pf.StringVarP(&profileName, "profile", "p", "", "Profile from .notebake to apply")
	pf.StringSliceVar(&includePatterns, "include", nil, "Only resolve files matching these glob patterns")
	pf.StringSliceVar(&excludePatterns, "exclude", nil, "Never resolve files matching these glob patterns (dir/ excludes a directory)")
	pf.BoolVarP(&includeIgnored, "include-gitignore", "i", false, "Resolve files that .gitignore would exclude")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log every resolution decision to stderr")
	pf.BoolVar(&includeLinks, "links", true, "Expand [[links]]")
	pf.BoolVar(&includeEmbeds, "embeds", true, "Expand ![[embeds]]")
	pf.BoolVar(&bakeInList, "in-list", true, "Expand references that are alone in a list item")
	pf.BoolVar(&convertFileLinks, "file-links", false, "Turn non-markdown embeds into file:// image links")

	rootCmd.Flags().BoolVarP(&toFile, "to-file", "f", false, "Write output to a file in the vault instead of stdout")
	rootCmd.Flags().StringVarP(&fileName, "file-name", "n", "", "Output path inside the vault (default <note>.baked.md next to the note)")
	rootCmd.Flags().BoolVarP(&openResult, "open", "o", false, "Write output to a file and open it")
	rootCmd.Flags().BoolVar(&printOutput, "print", false, "Print output to stdout")
	rootCmd.Flags().BoolVar(&copyOutput, "copy", false, "Copy output to the system clipboard")
	rootCmd.Flags().BoolVar(&sshCopyOutput, "ssh-copy", false, "Copy output through the terminal (OSC 52)")

	rootCmd.AddCommand(countCmd, serveCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
