package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/furnsearch/internal/domain/search/query"
)

func newImageCmd(opts *globalOptions) *cobra.Command {
	var isBase64 bool

	cmd := &cobra.Command{
		Use:   "image <file|->",
		Short: "Find products visually similar to an image",
		Long: `Find products visually similar to a JPEG or PNG image.

The image is embedded and matched against the image index only; related
tags are derived from the attributes of the top results.

Examples:
  furnsearch image ./sofa.jpg
  base64 sofa.png | furnsearch image - --base64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImage(cmd.InOrStdin(), args[0], isBase64)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts.env)
			if err != nil {
				return err
			}
			defer a.Close()

			resp := a.search.Image(cmd.Context(), data)
			return writeResponse(cmd.OutOrStdout(), opts.format, resp)
		},
	}

	cmd.Flags().BoolVar(&isBase64, "base64", false, "Input is base64-encoded (optionally a data URI)")
	return cmd
}

// readImage loads raw image bytes from a path or stdin ("-").
func readImage(stdin io.Reader, path string, isBase64 bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if !isBase64 {
		return data, nil
	}
	decoded, err := query.DecodeBase64Image(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return decoded, nil
}
