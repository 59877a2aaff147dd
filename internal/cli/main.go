package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "clipforge <url|file>",
		Short:        "Extract, caption and publish short-form clips from a source video",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			return run(cmd, source)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().Int("clips", 5, "Maximum number of clips")
	root.Flags().Float64("min-score", 60, "Minimum engagement score for a clip window")
	root.Flags().Float64("duration", 30, "Clip duration in seconds")
	root.Flags().String("aspect", "9:16", "Output aspect ratio: 9:16 or original")
	root.Flags().String("platform", "", "Source platform (detected from the URL when empty)")
	root.Flags().String("out", "out", "Directory for the run result file")
	root.Flags().String("captions", "", "JSON file with word-level captions in source time")
	root.Flags().String("font", "", "Caption font key (see --list-fonts)")
	root.Flags().String("position", "bottom", "Caption position: top, middle or bottom")
	root.Flags().Bool("list-fonts", false, "Print the supported caption fonts and exit")

	// Hidden tool-path overrides (internal)
	root.Flags().String("ffmpeg", "", "ffmpeg binary path")
	root.Flags().String("ffprobe", "", "ffprobe binary path")
	root.Flags().String("ytdlp", "", "yt-dlp binary path")
	_ = root.Flags().MarkHidden("ffmpeg")
	_ = root.Flags().MarkHidden("ffprobe")
	_ = root.Flags().MarkHidden("ytdlp")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
