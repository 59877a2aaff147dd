package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/pipeline"
)

func run(cmd *cobra.Command, source string) error {
	if list, _ := cmd.Flags().GetBool("list-fonts"); list {
		return printFonts(cmd)
	}
	if source == "" {
		return errors.New("a source url or input file is required")
	}

	clips, _ := cmd.Flags().GetInt("clips")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	duration, _ := cmd.Flags().GetFloat64("duration")
	aspect, _ := cmd.Flags().GetString("aspect")
	platform, _ := cmd.Flags().GetString("platform")
	outDir, _ := cmd.Flags().GetString("out")
	captionsFile, _ := cmd.Flags().GetString("captions")
	fontKey, _ := cmd.Flags().GetString("font")
	position, _ := cmd.Flags().GetString("position")
	ffmpegPath, _ := cmd.Flags().GetString("ffmpeg")
	ffprobePath, _ := cmd.Flags().GetString("ffprobe")
	ytdlpPath, _ := cmd.Flags().GetString("ytdlp")

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return errors.New("S3_BUCKET is required (set it in .env)")
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := pipeline.Config{
		Platform:        platform,
		ClipCount:       clips,
		MinScore:        minScore,
		ClipDurationSec: duration,
		AspectRatio:     aspect,
		CaptionsFile:    captionsFile,
		FontKey:         fontKey,
		CaptionPosition: position,
		OutDir:          outDir,

		YtDlpPath:   ytdlpPath,
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,

		S3Bucket:        bucket,
		S3Region:        getenvDefault("S3_REGION", "us-east-1"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),

		RemoteBaseURL: os.Getenv("PROCESSING_BASE_URL"),
		RemoteSecret:  os.Getenv("PROCESSING_SECRET"),

		Log: log,
	}

	if isURL(source) {
		cfg.SourceURL = source
	} else {
		abs, err := filepath.Abs(source)
		if err != nil {
			return err
		}
		cfg.InputPath = abs
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	res, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(res.Batch, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(b))
	return nil
}

func printFonts(cmd *cobra.Command) error {
	for _, f := range captions.DefaultRegistry().Fonts() {
		cmd.Printf("%-12s %-14s %s\n", f.Key, f.Family, f.Description)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
