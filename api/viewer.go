package api

import (
	"context"
	"fmt"
	"net/url"
)

// JoinResult is the server's acknowledgement of a viewer join/leave call.
type JoinResult struct {
	Success     bool `json:"success"`
	ViewerCount int  `json:"viewerCount"`
}

// viewerRequest carries the client-generated persistent viewer identifier, which the
// server uses to deduplicate repeated joins from the same client.
type viewerRequest struct {
	ViewerID string `json:"viewerId"`
}

// JoinStream registers this client as an active viewer of a stream.
func (c *Client) JoinStream(ctx context.Context, streamID, viewerID string) (*JoinResult, error) {
	return c.viewerCall(ctx, streamID, viewerID, "join")
}

// LeaveStream unregisters this client as an active viewer of a stream.
func (c *Client) LeaveStream(ctx context.Context, streamID, viewerID string) (*JoinResult, error) {
	return c.viewerCall(ctx, streamID, viewerID, "leave")
}

func (c *Client) viewerCall(ctx context.Context, streamID, viewerID, action string) (*JoinResult, error) {
	var result JoinResult
	path := fmt.Sprintf("/streams/%s/%s", url.PathEscape(streamID), action)
	if err := c.request(ctx, "POST", path, viewerRequest{ViewerID: viewerID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
