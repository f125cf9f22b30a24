package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// DefaultCallTimeout bounds a request when ctx carries no deadline
const DefaultCallTimeout = 10 * time.Second

// RemoteError is a failed Response turned into an error
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("daemon: %s (%s)", e.Message, e.Code)
}

// Call sends one request to the daemon over a fresh connection and waits
// for the matching response. Dial failures are returned as *DaemonError
// so callers can fall back to working on the file directly.
// A response with OK=false is returned together with a *RemoteError.
func Call(ctx context.Context, socketPath string, req Request) (*Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, ClassifyDaemonError(err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("connection error: %w", err)
		}
	}

	// unblock the decoder if ctx is cancelled before the deadline
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := json.NewEncoder(conn).Encode(Message{
		Version: ProtocolVersion,
		Type:    MsgRequest,
		Request: &req,
	}); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	decoder := json.NewDecoder(conn)
	for {
		var msg Message
		if err := decoder.Decode(&msg); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if msg.Type != MsgResponse || msg.Response == nil || msg.Response.RequestID != req.RequestID {
			continue
		}

		resp := msg.Response
		if !resp.OK {
			return resp, &RemoteError{Code: resp.ErrorCode, Message: resp.Error}
		}
		return resp, nil
	}
}

// MarkDone asks the daemon to mark a chore done in csvPath. The daemon
// answers CodeWrongFile when it serves a different file.
func MarkDone(ctx context.Context, socketPath, csvPath, choreID string) (*Response, error) {
	return Call(ctx, socketPath, Request{Action: ActionMarkDone, ChoreID: choreID, CSVPath: csvPath})
}

// IsRemoteCode reports whether err is a RemoteError with the given code
func IsRemoteCode(err error, code string) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.Code == code
}
