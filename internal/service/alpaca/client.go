package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ChartSignals/internal/domain/models"
	drepo "ChartSignals/internal/domain/repository"
)

// Client implements a MarketStream backed by the Alpaca market-data
// WebSocket, consuming one-minute bars for the configured symbols.
type Client struct {
	keyID          string
	secret         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            zerolog.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a new Alpaca MarketStream.
func New(keyID, secret, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log zerolog.Logger) drepo.MarketStream {
	return &Client{
		keyID:          keyID,
		secret:         secret,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection and authenticates.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("alpaca connect: %w", err)
	}
	c.conn = conn

	auth := map[string]string{"action": "auth", "key": c.keyID, "secret": c.secret}
	if err := conn.WriteJSON(auth); err != nil {
		_ = conn.Close()
		return fmt.Errorf("alpaca auth: %w", err)
	}
	c.connected = true
	c.log.Info().Str("url", c.websocketURL).Msg("alpaca connected")
	return nil
}

// Subscribe subscribes to bar updates for the configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("alpaca not connected")
	}
	msg := map[string]interface{}{"action": "subscribe", "bars": c.symbols}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("alpaca subscribe: %w", err)
	}
	c.log.Info().Strs("symbols", c.symbols).Msg("alpaca subscribed")
	return nil
}

// wire format: every frame is an array of messages tagged by "T"; bar
// messages carry T == "b" with an RFC3339 bar-open time.
type wsMessage struct {
	Type   string  `json:"T"`
	Symbol string  `json:"S"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
	Time   string  `json:"t"`
	Msg    string  `json:"msg"`
}

// Read streams bar events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Bar, <-chan error) {
	bars := make(chan *models.Bar, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(bars)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("alpaca conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("alpaca read: %w", err)
					return
				}
				var msgs []wsMessage
				if err := json.Unmarshal(b, &msgs); err != nil {
					// ignore non-array frames
					continue
				}
				for _, m := range msgs {
					switch m.Type {
					case "b":
						bar, err := barFrom(m)
						if err != nil {
							c.log.Debug().Err(err).Msg("skip malformed bar")
							continue
						}
						select {
						case bars <- bar:
						default:
							// drop on backpressure
						}
					case "error":
						c.log.Warn().Str("msg", m.Msg).Msg("alpaca error frame")
					}
				}
			}
		}
	}()

	return bars, errs
}

func barFrom(m wsMessage) (*models.Bar, error) {
	ts, err := time.Parse(time.RFC3339, m.Time)
	if err != nil {
		return nil, fmt.Errorf("bar time %q: %w", m.Time, err)
	}
	bar := &models.Bar{
		Symbol:    m.Symbol,
		Timestamp: ts.Unix(),
		Open:      m.Open,
		High:      m.High,
		Low:       m.Low,
		Close:     m.Close,
		Volume:    m.Volume,
	}
	if err := bar.Validate(); err != nil {
		return nil, err
	}
	return bar, nil
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }

// Symbols returns the configured subscription list.
func (c *Client) Symbols() []string { return c.symbols }
