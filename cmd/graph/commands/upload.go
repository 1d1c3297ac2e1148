package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noverloop/koala/pkg/graph"
)

// NewUploadCommand creates the upload command
func NewUploadCommand() *cobra.Command {
	var (
		target      string
		contentType string
		caption     string
		paramFlags  []string
		video       bool
	)

	cmd := &cobra.Command{
		Use:   "upload SOURCE",
		Short: "Upload a photo or video",
		Long: `Upload a photo (default) or video (--video) to an object. SOURCE is a
local file path or an absolute http(s) URL; URLs are fetched by the service
itself rather than uploaded.

  graph upload ./cat.png --caption "cat"
  graph upload https://example.com/cat.png --target page-id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			if caption != "" {
				if params == nil {
					params = graph.Params{}
				}

				params["caption"] = caption
			}

			client, err := newAuthenticatedClient()
			if err != nil {
				return err
			}

			mediaArgs := buildMediaArgs(args[0], contentType, params, target)

			var result map[string]interface{}
			if video {
				result, err = client.PutVideo(cmd.Context(), mediaArgs...)
			} else {
				result, err = client.PutPicture(cmd.Context(), mediaArgs...)
			}

			if err != nil {
				return fmt.Errorf("uploading %s: %w", args[0], err)
			}

			return renderResult(result)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "object to attach the media to (default me)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type of a file source")
	cmd.Flags().StringVar(&caption, "caption", "", "caption parameter shorthand")
	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "call parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&video, "video", false, "upload to the videos connection")

	return cmd
}

// buildMediaArgs assembles the positional media argument list, leaving out
// the slots that were not given.
func buildMediaArgs(source, contentType string, params graph.Params, target string) []interface{} {
	mediaArgs := []interface{}{source}

	if contentType != "" {
		mediaArgs = append(mediaArgs, contentType)
	}

	// A bare string after the source would be read as a content type, so a
	// target always travels behind an argument map.
	if target != "" && params == nil {
		params = graph.Params{}
	}

	if params != nil {
		mediaArgs = append(mediaArgs, params)
	}

	if target != "" {
		mediaArgs = append(mediaArgs, target)
	}

	return mediaArgs
}
