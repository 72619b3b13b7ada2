package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tavanh/ytscript/internal/archive"
	"github.com/tavanh/ytscript/internal/clean"
	"github.com/tavanh/ytscript/internal/failures"
	"github.com/tavanh/ytscript/internal/report"
	"github.com/tavanh/ytscript/internal/resolve"
	"github.com/tavanh/ytscript/internal/search"
	"github.com/tavanh/ytscript/internal/store"
	"github.com/tavanh/ytscript/internal/tube"
	"github.com/tavanh/ytscript/internal/webui"
)

var yt = &tube.Client{}

// errReported marks failures that were already printed for the user,
// main only has to turn them into a non-zero exit.
var errReported = errors.New("reported")

var (
	flagLangs     []string
	flagKeepStage bool
	flagDebug     bool
	flagOutputDir string
	flagNoSave    bool
	flagNoArchive bool
	flagArchive   string
	flagAddr      string
)

var rootCmd = &cobra.Command{
	Use:   "ytscript <url-or-id>",
	Short: "Extract the text transcript of a YouTube video",
	Example: `  ytscript "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytscript dQw4w9WgXcQ -l nl -l en
  ytscript dQw4w9WgXcQ --no-save`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var searchCmd = &cobra.Command{
	Use:           "search <query>",
	Short:         "Search through previously fetched transcripts",
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd.Context(), strings.Join(args, " "))
	},
}

var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the transcript archive in the browser",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, queries, err := archive.Open(archivePath())
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()

		return webui.Start(cmd.Context(), queries, flagAddr)
	},
}

func init() {
	rootCmd.Flags().StringArrayVarP(&flagLangs, "lang", "l", []string{"en"}, "Preferred language code, can be given multiple times")
	rootCmd.Flags().BoolVar(&flagKeepStage, "keep-stage", false, "Keep bracketed stage directions like [Music]")
	rootCmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug output to troubleshoot issues")
	rootCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", ".", "Directory to save transcript files")
	rootCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Don't save to file, only print to console")
	rootCmd.Flags().BoolVar(&flagNoArchive, "no-archive", false, "Don't record the transcript in the local archive")

	rootCmd.PersistentFlags().StringVar(&flagArchive, "archive", "", "Path to the archive database (default: $YTSCRIPT_ARCHIVE or ~/.ytscript/archive.sqlite)")
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Address for the archive UI to listen on")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
}

func runFetch(ctx context.Context, out io.Writer, input string) error {
	fmt.Fprintf(out, "Fetching transcript for: %s\n", input)
	fmt.Fprintf(out, "Preferred languages: %s\n\n", strings.Join(flagLangs, ", "))

	id := resolve.VideoID(input)
	if flagDebug {
		fmt.Fprintf(out, "Debug: Extracted video ID: %s\n", id)
	}

	segments, track, err := yt.Transcript(id, flagLangs)
	if err != nil {
		if flagDebug {
			fmt.Fprintf(out, "Debug: %v\n", err)
		}

		fmt.Fprintln(out, failures.Classify(err, id, flagLangs).Render())
		return errReported
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	text := clean.Text(strings.Join(texts, " "), !flagKeepStage)

	fmt.Fprintln(out, text)
	fmt.Fprintln(out)

	if flagNoSave {
		return nil
	}

	title := yt.Title(id)
	path, err := report.Write(id, title, text, flagOutputDir)
	if err != nil {
		fmt.Fprintf(out, "\n✗ Failed to save transcript: %v\n", err)
		return errReported
	}
	fmt.Fprintf(out, "\n✓ Transcript saved to: %s\n", path)

	if !flagNoArchive {
		if err := record(ctx, id, title, track, segments); err != nil {
			log.Printf("[WARN]: archiving transcript: %v", err)
		}
	}

	return nil
}

func record(ctx context.Context, id string, title string, track tube.Track, segments []tube.Segment) error {
	db, queries, err := archive.Open(archivePath())
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	typ := store.TubeManual
	if track.Generated() {
		typ = store.TubeAuto
	}

	entry := archive.Entry{
		VideoID:  id,
		Title:    title,
		Language: track.LanguageCode,
		Type:     typ,
	}
	return archive.Record(ctx, db, queries, entry, segments)
}

func runSearch(ctx context.Context, query string) error {
	db, queries, err := archive.Open(archivePath())
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer db.Close()

	results, err := search.Search(ctx, queries, query)
	if err != nil {
		return fmt.Errorf("searching archive: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, res := range results {
		fmt.Printf("%s (%s)\n", res.Video.Title, res.Video.ID)
		for _, match := range res.Matches {
			fmt.Printf("  [%s] %s\n", match.StartDuration(), match.Text)
			fmt.Printf("        https://www.youtube.com/watch?v=%s&t=%ds\n", res.Video.ID, match.StartSeconds())
		}
		fmt.Println()
	}

	return nil
}

// archivePath resolves where the archive database lives, flag first,
// then the environment, then a dotfile directory in the user's home.
func archivePath() string {
	if flagArchive != "" {
		return flagArchive
	}

	if env := os.Getenv("YTSCRIPT_ARCHIVE"); env != "" {
		return env
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("[WARN]: resolving home directory: %v", err)
		return "archive.sqlite"
	}

	return filepath.Join(home, ".ytscript", "archive.sqlite")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
