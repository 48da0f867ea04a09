package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/pricing"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	frameBuffer  = 16
)

// CartFrame is one message on the cart feed.
type CartFrame struct {
	Type      string      `json:"type"`
	Action    cart.Action `json:"action,omitempty"`
	ProductID string      `json:"product_id,omitempty"`
	Message   string      `json:"message,omitempty"`
	Cart      CartView    `json:"cart"`
}

// CartFeed streams cart changes of the session over a websocket.
type CartFeed struct {
	upgrader websocket.Upgrader
	pricing  pricing.Policy
}

func NewCartFeed(policy pricing.Policy, publicBaseURL string) *CartFeed {
	return &CartFeed{
		upgrader: websocket.Upgrader{
			CheckOrigin: sameOrigin(publicBaseURL),
		},
		pricing: policy,
	}
}

// sameOrigin accepts requests without an Origin header, from the host being
// served, or from the public storefront URL.
func sameOrigin(publicBaseURL string) func(r *http.Request) bool {
	var public string
	if u, err := url.Parse(publicBaseURL); err == nil {
		public = u.Host
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host) || (public != "" && strings.EqualFold(u.Host, public))
	}
}

func (f *CartFeed) frame(frameType string, c cart.Change) CartFrame {
	out := CartFrame{
		Type:      frameType,
		Action:    c.Action,
		ProductID: c.ProductID,
		Cart:      newCartView(c.State, f.pricing),
	}
	if c.Action == cart.ActionAdded {
		out.Message = c.ProductName + " added to cart"
	}
	return out
}

// Serve handles GET /api/v1/cart/ws. The first frame is the current cart;
// every change after that produces a cart_updated frame. The feed is closed
// with going-away once the session's cart is closed, so the client reconnects
// to the live session.
func (f *CartFeed) Serve(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	log := requestLogger(r).With(zap.String("session_id", sess.ID))

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	frames := make(chan CartFrame, frameBuffer)
	unsubscribe := sess.Cart.Subscribe(func(c cart.Change) {
		select {
		case frames <- f.frame("cart_updated", c):
		default:
			log.Warn("cart feed is behind, dropping frame")
		}
	})
	defer unsubscribe()

	if err := f.write(conn, f.frame("cart_snapshot", cart.Change{State: sess.Cart.State()})); err != nil {
		return
	}

	// The client never sends anything useful; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-frames:
			if err := f.write(conn, frame); err != nil {
				log.Debug("cart feed write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-sess.Cart.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (f *CartFeed) write(conn *websocket.Conn, frame CartFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
