// Package bot serves engine moves over NATS. A request carries a position
// as FEN, optionally followed by moves played from it; the reply is the
// engine's choice for the side to move.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/xiangqi/config"
	"github.com/domino14/xiangqi/game"
)

// Request asks for a move. Zero Plies or TimeMs mean the configured value.
type Request struct {
	FEN    string   `json:"fen"`
	Moves  []string `json:"moves,omitempty"`
	Plies  int      `json:"plies,omitempty"`
	TimeMs int      `json:"time_ms,omitempty"`
}

// Response holds either a move or an error. State is the game state after
// the request's moves, before the engine's move.
type Response struct {
	Move  string `json:"move,omitempty"`
	Value int    `json:"value"`
	Depth int    `json:"depth"`
	State string `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}

type Bot struct {
	sync.Mutex
	config *config.Config
	game   *game.Game
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{config: cfg, game: game.NewGame(cfg)}
}

func errorResponse(message string, err error) *Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &Response{Error: msg}
}

func (bot *Bot) Deserialize(data []byte) (*Request, error) {
	req := &Request{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, err
	}
	if req.FEN == "" {
		return nil, fmt.Errorf("request has no fen")
	}
	if req.Plies < 0 || req.TimeMs < 0 {
		return nil, fmt.Errorf("plies and time_ms must not be negative")
	}
	return req, nil
}

func (bot *Bot) handle(ctx context.Context, data []byte) *Response {
	req, err := bot.Deserialize(data)
	if err != nil {
		return errorResponse("could not parse request", err)
	}
	bot.Lock()
	defer bot.Unlock()

	g := bot.game
	if err := g.LoadFEN(req.FEN); err != nil {
		return errorResponse("bad fen", err)
	}
	for _, m := range req.Moves {
		if _, err := g.PlayMoveText(m); err != nil {
			return errorResponse("bad move history", err)
		}
	}
	state := g.Playing().String()
	if g.Playing() != game.PlayStatePlaying {
		return &Response{State: state, Error: game.ErrGameOver.Error()}
	}

	g.SetSearchPlies(req.Plies)
	budget := bot.config.GetDuration(config.ConfigSearchTime)
	if req.TimeMs > 0 {
		budget = time.Duration(req.TimeMs) * time.Millisecond
	}
	g.Solver().SetTimeBudget(budget)

	m, v, err := g.EngineMove(ctx)
	if err != nil {
		return errorResponse("engine error", err)
	}
	log.Info().Str("fen", req.FEN).Int("history", len(req.Moves)).
		Str("move", m.ShortDescription()).Int("value", v).Msg("generated-move")
	return &Response{
		Move:  m.ShortDescription(),
		Value: v,
		Depth: g.Solver().CompletedDepth(),
		State: state,
	}
}

// ConnectAttempts is how many times Main tries to reach the NATS server.
const ConnectAttempts = 5

func connect(ctx context.Context, url string) (*nats.Conn, error) {
	return retry.DoWithData(
		func() (*nats.Conn, error) {
			return nats.Connect(url)
		},
		retry.Context(ctx),
		retry.Attempts(ConnectAttempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("url", url).Msg("nats-connect-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Main subscribes the bot to channel and answers requests until ctx is
// done.
func Main(ctx context.Context, channel string, bot *Bot) error {
	nc, err := connect(ctx, bot.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return err
	}
	defer nc.Close()

	_, err = nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		resp := bot.handle(ctx, m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			m.Respond([]byte(err.Error()))
			return
		}
		if err := m.Respond(data); err != nil {
			log.Err(err).Msg("respond-error")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}

	log.Info().Msgf("Listening on [%s]", channel)
	<-ctx.Done()
	return nc.Drain()
}
