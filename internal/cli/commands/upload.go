package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <friend|group|temp> <file>",
		Short: "Upload an image for later sending",
		Long: `Upload an image and print its image id. An image uploaded for one kind
of conversation can only be sent to that kind.`,
		Example: `  mirai upload group ./cat.png`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := gateway.ParseImageType(args[0])
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer func() { _ = f.Close() }()

			return withSession(cmd, func(s *gateway.Session) error {
				img, err := s.UploadImage(cmd.Context(), typ, f, filepath.Base(args[1]))
				if err != nil {
					return err
				}
				rows := [][]string{{img.ImageID, img.URL, img.Path}}
				return writeOutput(cmd, img, []string{"Image ID", "URL", "Path"}, rows)
			})
		},
	}
	addOutputFlag(cmd, outputTable, outputTable, outputJSON, outputYAML)
	return cmd
}
