package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liteclaw/mirai/pkg/message"
	gateway "github.com/liteclaw/mirai/pkg/mirai"
)

type sendOptions struct {
	images []string
	flash  bool
	quote  int64
	at     []string
	atAll  bool
	faces  []int32
}

// NewSendCommand creates the send command.
func NewSendCommand() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send <channel> [text...]",
		Short: "Send a message",
		Long: `Send a message to a group, a friend or a temporary session.

The channel is group:<id>, friend:<qq> or temp:<qq>@<group>. Images given
as http(s) URLs are sent by URL; anything else is read as a local file and
uploaded first.`,
		Example: `  mirai send group:123456 "hello everyone"
  mirai send friend:10001 --image ./cat.png
  mirai send group:123456 --at 10001 --quote 42 "see above"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := message.ParseChannel(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			session, release, err := openSession(cmd, cfg)
			if err != nil {
				return err
			}
			defer release()

			msg, err := opts.build(cmd, session, ch, text)
			if err != nil {
				return err
			}

			id, err := session.SendMessage(cmd.Context(), ch, msg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent message %d to %s\n", id, ch)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&opts.images, "image", nil, "Attach an image by URL or local file (repeatable)")
	cmd.Flags().BoolVar(&opts.flash, "flash", false, "Send images as flash images")
	cmd.Flags().Int64Var(&opts.quote, "quote", 0, "Quote the message with this id")
	cmd.Flags().StringSliceVar(&opts.at, "at", nil, "Mention these members (group only)")
	cmd.Flags().BoolVar(&opts.atAll, "at-all", false, "Mention everyone (group only)")
	cmd.Flags().Int32SliceVar(&opts.faces, "face", nil, "Append built-in faces by id")

	return cmd
}

func (o *sendOptions) build(cmd *cobra.Command, session *gateway.Session, ch message.Channel, text string) (*message.Message, error) {
	b := message.NewBuilder()
	if o.quote != 0 {
		b.Quote(message.MessageID(o.quote))
	}

	if (len(o.at) > 0 || o.atAll) && ch.Kind() != message.ChannelGroup {
		return nil, fmt.Errorf("mentions can only be sent to groups, not %s", ch)
	}
	for _, s := range o.at {
		target, err := parseTargetArg("member", s)
		if err != nil {
			return nil, err
		}
		b.At(target)
	}
	if o.atAll {
		b.AtAll()
	}

	if text != "" {
		if len(o.at) > 0 || o.atAll {
			text = " " + text
		}
		b.Plain(text)
	}
	for _, id := range o.faces {
		b.Face(id)
	}

	for _, img := range o.images {
		ref, err := resolveImage(cmd, session, ch, img)
		if err != nil {
			return nil, err
		}
		if o.flash {
			b.FlashImage(ref)
		} else {
			b.Image(ref)
		}
	}

	return b.Build()
}

func resolveImage(cmd *cobra.Command, session *gateway.Session, ch message.Channel, img string) (message.ImageRef, error) {
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return message.ImageRef{URL: img}, nil
	}

	f, err := os.Open(img)
	if err != nil {
		return message.ImageRef{}, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	uploaded, err := session.UploadImage(cmd.Context(), gateway.ImageTypeFor(ch), f, filepath.Base(img))
	if err != nil {
		return message.ImageRef{}, err
	}
	return uploaded.Image().ImageRef, nil
}
