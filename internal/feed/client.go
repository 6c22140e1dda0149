package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames.
	maxMessageSize = 512
)

// Client pumps events for one subscriber onto its websocket.
type Client struct {
	conn   *websocket.Conn
	events <-chan Event
	log    *logrus.Entry

	done     chan struct{}
	doneOnce sync.Once
}

func NewClient(conn *websocket.Conn, events <-chan Event, log *logrus.Entry) *Client {
	return &Client{
		conn:   conn,
		events: events,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Run writes initial, then streams events until the peer goes away or the
// event channel is closed. It blocks until the connection is finished.
func (c *Client) Run(initial []Event) {
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(initial)
	}()
	c.readPump()
	<-writerDone
}

func (c *Client) stop() {
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.stop()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("feed connection closed")
			}
			return
		}
	}
}

func (c *Client) write(ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) writePump(initial []Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.stop()
		c.conn.Close()
	}()

	for _, ev := range initial {
		if err := c.write(ev); err != nil {
			return
		}
	}

	for {
		select {
		case <-c.done:
			return

		case ev, ok := <-c.events:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"))
				return
			}
			if err := c.write(ev); err != nil {
				c.log.WithError(err).Debug("feed write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
