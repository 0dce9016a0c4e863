package api

import (
	"context"
	"fmt"
	"net/url"
)

// Profile is a channel's public profile.
type Profile struct {
	Username      string `json:"username" jsonschema:"description=Channel name."`
	DisplayName   string `json:"displayName" jsonschema:"description=Channel display name."`
	Bio           string `json:"bio" jsonschema:"description=Channel description."`
	AvatarURL     string `json:"avatarUrl" jsonschema:"description=URL of the profile picture."`
	FollowerCount int    `json:"followerCount" jsonschema:"description=Number of accounts following the channel."`
	IsLive        bool   `json:"isLive" jsonschema:"description=Whether the channel is currently broadcasting."`
}

// Profile fetches the public profile of a channel.
func (c *Client) Profile(ctx context.Context, username string) (*Profile, error) {
	var profile Profile
	path := fmt.Sprintf("/user/%s/profile", url.PathEscape(username))
	if err := c.request(ctx, "GET", path, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Follow subscribes the authenticated account to a channel.
func (c *Client) Follow(ctx context.Context, channel string) error {
	path := fmt.Sprintf("/user/%s/follow", url.PathEscape(channel))
	return c.request(ctx, "POST", path, nil, nil)
}

// Unfollow removes the authenticated account's subscription to a channel.
func (c *Client) Unfollow(ctx context.Context, channel string) error {
	path := fmt.Sprintf("/user/%s/follow", url.PathEscape(channel))
	return c.request(ctx, "DELETE", path, nil, nil)
}

// Following lists the channels the authenticated account follows.
func (c *Client) Following(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.request(ctx, "GET", "/me/following", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
