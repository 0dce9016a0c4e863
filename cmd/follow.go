// Package cmd implements the command-line interface for streamwatch.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/auth"
	"github.com/streamer459/streamingdev-sub000/color"
	"github.com/streamer459/streamingdev-sub000/icon"
	"github.com/streamer459/streamingdev-sub000/query"
	"github.com/streamer459/streamingdev-sub000/style"
	"github.com/streamer459/streamingdev-sub000/util"
)

func completionChannels(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
}

func authedClient() *api.Client {
	return api.New().WithToken(auth.GetToken)
}

func requireAuth(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		handleErr(errors.New("sign in with `login` first"))
	}
	handleErr(err)
}

func init() {
	rootCmd.AddCommand(followCmd)
}

// followCmd subscribes the signed-in account to a channel.
var followCmd = &cobra.Command{
	Use:               "follow [channel]",
	Short:             "Follow a channel with the signed-in account",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionChannels,
	Run: func(cmd *cobra.Command, args []string) {
		channel := strings.ToLower(args[0])
		requireAuth(authedClient().Follow(cmd.Context(), channel))

		fmt.Printf(
			"%s following %s\n",
			style.Fg(color.Green)(icon.Get(icon.Heart)),
			style.Fg(color.Purple)(channel),
		)
	},
}

func init() {
	rootCmd.AddCommand(unfollowCmd)
}

// unfollowCmd removes a channel subscription.
var unfollowCmd = &cobra.Command{
	Use:               "unfollow [channel]",
	Short:             "Unfollow a channel",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionChannels,
	Run: func(cmd *cobra.Command, args []string) {
		channel := strings.ToLower(args[0])
		requireAuth(authedClient().Unfollow(cmd.Context(), channel))

		fmt.Printf(
			"%s unfollowed %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(channel),
		)
	},
}

func init() {
	rootCmd.AddCommand(followingCmd)
}

// followingCmd lists the channels the signed-in account follows.
var followingCmd = &cobra.Command{
	Use:   "following",
	Short: "List the channels the signed-in account follows",
	Run: func(cmd *cobra.Command, args []string) {
		profiles, err := authedClient().Following(cmd.Context())
		requireAuth(err)

		if len(profiles) == 0 {
			fmt.Println(style.Faint("not following anyone yet"))
			return
		}

		live, offline := lo.FilterReject(profiles, func(p api.Profile, _ int) bool {
			return p.IsLive
		})

		for _, p := range append(live, offline...) {
			marker := icon.Get(icon.Offline)
			name := p.Username
			if p.IsLive {
				marker = icon.Get(icon.Live)
				name = style.Bold(name)
			}

			fmt.Printf(
				"%s %s %s\n",
				marker,
				name,
				style.Faint(util.Quantify(p.FollowerCount, "follower", "followers")),
			)
		}
	},
}
