package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"fiveinrow/internal/board"
)

// throttleInterval is the minimum spacing the remote service's rate
// limit requires between successive calls.
const throttleInterval = 1 * time.Second

// backoff429 is how long to sleep before retrying a call the service
// answered with HTTP 429.
const backoff429 = 1100 * time.Millisecond

// rivalMoveTimeout and rivalConnectTimeout bound how long AwaitMove
// will keep polling before giving up: less patience once the opponent
// is known to exist and it is simply taking its turn, more while
// nobody has joined the game yet.
const (
	rivalMoveTimeout    = 300 * time.Second
	rivalConnectTimeout = 900 * time.Second
)

// httpAPI is the throttled POST helper every endpoint below goes
// through: it serializes calls at least throttleInterval apart and
// retries on HTTP 429, mirroring the reference client's post_data.
type httpAPI struct {
	client   *http.Client
	baseURL  string
	lastCall time.Time
}

func newHTTPAPI(baseURL string) *httpAPI {
	return &httpAPI{client: &http.Client{Timeout: 30 * time.Second}, baseURL: baseURL}
}

func (a *httpAPI) postData(ctx context.Context, path string, payload, out any) error {
	if wait := throttleInterval - time.Since(a.lastCall); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &ApiError{Op: "marshal " + path, Err: err}
	}

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return &ApiError{Op: "build request " + path, Err: err}
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return &ApiError{Op: "post " + path, Err: err}
		}
		a.lastCall = time.Now()

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			log.Printf("[Connection] rate limited on %s, backing off", path)
			select {
			case <-time.After(backoff429):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return &ApiError{Op: "read response " + path, Err: err}
		}
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return &ApiError{Op: "decode response " + path, Err: err}
			}
		}
		return nil
	}
}

// connectPayload/connectResponse, playPayload, statusPayload/
// statusResponse mirror the remote service's wire schema exactly
// (field names and casing match what the service expects and returns).
type connectPayload struct {
	UserToken string `json:"userToken"`
}

type connectResponse struct {
	StatusCode int    `json:"statusCode"`
	GameToken  string `json:"gameToken"`
	GameID     string `json:"gameId"`
}

type playPayload struct {
	UserToken string `json:"userToken"`
	GameToken string `json:"gameToken"`
	PositionX int    `json:"positionX"`
	PositionY int    `json:"positionY"`
}

type statusPayload struct {
	UserToken string `json:"userToken"`
	GameToken string `json:"gameToken"`
}

type coordinate struct {
	PlayerID string `json:"playerId"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

type statusResponse struct {
	StatusCode      int          `json:"statusCode"`
	PlayerCrossID   *string      `json:"playerCrossId"`
	PlayerCircleID  *string      `json:"playerCircleId"`
	ActualPlayerID  *string      `json:"actualPlayerId"`
	WinnerID        *string      `json:"winnerId"`
	Coordinates     []coordinate `json:"coordinates"`
}

// HTTPConnection is the concrete GameConnection adapter against the
// remote turn-based service: it registers a game, submits moves, and
// long-polls for the opponent's reply, applying the rate-limit and
// timeout contract the service requires.
type HTTPConnection struct {
	api       *httpAPI
	selfID    string
	selfToken string
	gameToken string
}

// NewHTTPConnection builds a connection against baseURL, authenticated
// as selfID/selfToken.
func NewHTTPConnection(baseURL, selfID, selfToken string) *HTTPConnection {
	return &HTTPConnection{api: newHTTPAPI(baseURL), selfID: selfID, selfToken: selfToken}
}

// StartGame registers a new game and returns the initial board — empty
// for a fresh game, or the position already in progress if rejoining.
func (c *HTTPConnection) StartGame(ctx context.Context) (*board.Board, error) {
	var conn connectResponse
	err := c.api.postData(ctx, "/api/v1/connect", connectPayload{UserToken: c.selfToken}, &conn)
	if err != nil {
		return nil, err
	}
	c.gameToken = conn.GameToken
	log.Printf("[Connection] connected, game token %s", c.gameToken)

	var stat statusResponse
	err = c.api.postData(ctx, "/api/v1/checkStatus", statusPayload{UserToken: c.selfToken, GameToken: c.gameToken}, &stat)
	if err != nil {
		return nil, err
	}
	return board.FromCoordinates(toBoardCoordinates(stat.Coordinates), c.selfID), nil
}

// PutMove submits m to the service.
func (c *HTTPConnection) PutMove(ctx context.Context, m board.Move) error {
	if c.gameToken == "" {
		return ErrInvalid
	}
	payload := playPayload{
		UserToken: c.selfToken,
		GameToken: c.gameToken,
		PositionX: m.X,
		PositionY: m.Y,
	}
	var out statusResponse
	return c.api.postData(ctx, "/api/v1/play", payload, &out)
}

// AwaitMove long-polls checkLastStatus until it is our turn or the game
// ends, applying the service's own status codes (226 = finished
// unexpectedly, >=400 = invalid) and the two rival timeouts: a shorter
// one once an opponent has joined and the wait is purely for their
// move, a longer one while waiting for an opponent to connect at all.
func (c *HTTPConnection) AwaitMove(ctx context.Context) (*board.Move, string, error) {
	if c.gameToken == "" {
		return nil, "", ErrInvalid
	}
	payload := statusPayload{UserToken: c.selfToken, GameToken: c.gameToken}

	start := time.Now()
	reported := false
	for {
		var stat statusResponse
		if err := c.api.postData(ctx, "/api/v1/checkLastStatus", payload, &stat); err != nil {
			return nil, "", err
		}

		rivalKnown := stat.PlayerCrossID != nil && stat.PlayerCircleID != nil
		myTurn := stat.ActualPlayerID != nil && rivalKnown && *stat.ActualPlayerID == c.selfID

		if !myTurn {
			if rivalKnown {
				if !reported {
					reported = true
					log.Printf("[Connection] waiting for rival's move...")
				}
				if time.Since(start) > rivalMoveTimeout {
					return nil, "", fmt.Errorf("%w: rival move", ErrRivalTimeout)
				}
			} else {
				if !reported {
					reported = true
					log.Printf("[Connection] waiting for rival to connect...")
				}
				if time.Since(start) > rivalConnectTimeout {
					return nil, "", fmt.Errorf("%w: rival connect", ErrRivalTimeout)
				}
			}
		}

		if stat.WinnerID != nil {
			return nil, *stat.WinnerID, nil
		}
		if stat.StatusCode == 226 {
			return nil, "", ErrFinishedUnexpectedly
		}
		if stat.StatusCode >= 400 {
			return nil, "", ErrInvalid
		}

		if !myTurn {
			select {
			case <-time.After(throttleInterval):
			case <-ctx.Done():
				return nil, "", ctx.Err()
			}
			continue
		}

		// It's our turn: the opponent's last move, if any, is the first
		// coordinate the service reports.
		if len(stat.Coordinates) == 0 {
			return nil, "", nil
		}
		last := stat.Coordinates[0]
		mv := board.NewRival(last.X, last.Y)
		if last.PlayerID == c.selfID {
			mv = board.NewMine(last.X, last.Y)
		}
		return &mv, "", nil
	}
}

func toBoardCoordinates(cs []coordinate) []board.Coordinate {
	out := make([]board.Coordinate, len(cs))
	for i, c := range cs {
		out[i] = board.Coordinate{PlayerID: c.PlayerID, X: c.X, Y: c.Y}
	}
	return out
}
