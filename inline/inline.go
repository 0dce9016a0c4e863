package inline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/hls"
	"github.com/streamer459/streamingdev-sub000/log"
	"github.com/streamer459/streamingdev-sub000/profile"
	"github.com/streamer459/streamingdev-sub000/session"
	"github.com/streamer459/streamingdev-sub000/util"
)

// Run executes one inline invocation and writes the result to options.Out.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	client := api.New()

	channels := options.Channels
	if len(channels) == 0 {
		live, err := client.LiveChannels(ctx)
		if err != nil {
			return fmt.Errorf("list live channels: %w", err)
		}

		if options.ChannelPicker.IsPresent() {
			picker := options.ChannelPicker.MustGet()
			if choice := picker(live); choice != nil {
				live = []api.LiveChannel{*choice}
			} else {
				live = nil
			}
		}

		for _, ch := range live {
			channels = append(channels, ch.Username)
		}
	}

	if options.Watch {
		if len(channels) != 1 {
			return errors.New("watch mode needs exactly one channel")
		}
		return watch(ctx, client, channels[0], options.Out)
	}

	statuses := make([]*ChannelStatus, 0, len(channels))
	for _, channel := range channels {
		status, err := report(ctx, client, channel, options)
		if err != nil {
			return err
		}
		statuses = append(statuses, status)
	}

	if options.Json {
		return writeJson(options.Out, statuses)
	}

	for _, status := range statuses {
		printStatus(options.Out, status)
	}

	return nil
}

func report(ctx context.Context, client *api.Client, channel string, options *Options) (*ChannelStatus, error) {
	status := &ChannelStatus{Channel: strings.ToLower(strings.TrimSpace(channel))}

	stream, err := client.StreamInfo(ctx, status.Channel)
	switch {
	case errors.Is(err, api.ErrNotFound):
		return status, nil
	case err != nil:
		return nil, fmt.Errorf("stream info for %s: %w", status.Channel, err)
	}

	status.Found = true
	status.Stream = stream

	if options.IncludeProfile {
		p, err := client.Profile(ctx, status.Channel)
		if err != nil {
			log.Warnf("failed to fetch profile for %s: %v", status.Channel, err)
		} else {
			status.Profile = p

			if p.AvatarURL != "" {
				// Overlay tooling wants a local file, not a URL.
				if path, err := profile.AvatarPath(ctx, p.AvatarURL); err == nil {
					status.AvatarPath = path
				}
			}
		}
	}

	if options.IncludeVariants && stream.IsLive && stream.PlaybackURL != "" {
		variants, err := hls.NewResolver().Resolve(ctx, stream.PlaybackURL)
		if err != nil {
			log.Warnf("failed to resolve variants for %s: %v", status.Channel, err)
		} else {
			status.Variants = variants
		}
	}

	return status, nil
}

func printStatus(out io.Writer, status *ChannelStatus) {
	switch {
	case !status.Found:
		fmt.Fprintf(out, "%s: not found\n", status.Channel)
	case status.Stream.IsLive:
		fmt.Fprintf(out, "%s: live %q up %s, %s\n",
			status.Channel,
			status.Stream.Title,
			status.Stream.Uptime,
			util.Quantify(status.Stream.ViewerCount, "viewer", "viewers"),
		)
	default:
		fmt.Fprintf(out, "%s: offline\n", status.Channel)
	}

	for _, v := range status.Variants {
		fmt.Fprintf(out, "  %s %s\n", v.Name, v.URL)
	}
}

// watch runs a full watch session without the TUI, printing state
// transitions as they happen. It returns once the viewer closes the
// player or the context is cancelled.
func watch(ctx context.Context, client *api.Client, channel string, out io.Writer) error {
	sess := session.New(client, hls.NewResolver(), session.DefaultFactory)
	defer sess.Stop()

	if err := sess.Watch(channel); err != nil {
		return err
	}

	var last string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sess.Done():
			return nil
		case ev := <-sess.Events():
			switch ev.Kind {
			case session.EventEnded:
				return nil
			case session.EventNotice:
				fmt.Fprintln(out, ev.Notice)
			case session.EventUpdate:
				// Uptime ticks alone are not worth a line.
				sn := sess.Snapshot()
				line := watchLine(sn)
				if line != last {
					last = line
					fmt.Fprintln(out, line)
				}
			}
		}
	}
}

func watchLine(sn session.Snapshot) string {
	switch sn.State {
	case session.StateWatching:
		return fmt.Sprintf("%s: watching %q at %s, %s",
			sn.Channel, sn.Title, sn.Quality,
			util.Quantify(sn.Viewers, "viewer", "viewers"))
	case session.StateInitializing:
		return fmt.Sprintf("%s: live %q, starting playback", sn.Channel, sn.Title)
	default:
		return fmt.Sprintf("%s: %s", sn.Channel, sn.State)
	}
}
