// Package ws serves live tracking updates over WebSocket. A client connects
// for one group (an order, a courier, or a restaurant feed), receives the
// current snapshot first, then every update published for that group.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler upgrades HTTP requests to WebSocket connections and bridges them
// onto registry subscriptions. Courier sockets additionally accept inbound
// position ticks and feed them to the relay.
type Handler struct {
	registry       *realtime.Registry
	reportPosition commands.ReportPositionCommandHandler
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewHandler creates a WebSocket handler over the given registry.
func NewHandler(
	registry *realtime.Registry,
	reportPosition commands.ReportPositionCommandHandler,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		registry:       registry,
		reportPosition: reportPosition,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger.With("component", "ws"),
	}
}

// RegisterRoutes mounts the subscription endpoints.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/orders/:orderID", h.SubscribeOrder)
	e.GET("/ws/couriers/:courierID", h.SubscribeCourier)
	e.GET("/ws/restaurants/:restaurantID", h.SubscribeRestaurant)
}

// SubscribeOrder streams ETA and position updates for one order.
func (h *Handler) SubscribeOrder(ctx echo.Context) error {
	return h.subscribe(ctx, ctx.Param("orderID"), realtime.OrderGroup)
}

// SubscribeCourier serves the courier's own socket: position updates for the
// courier group flow out, and the courier app may push its position ticks in
// on the same connection.
func (h *Handler) SubscribeCourier(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierID"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"message": "invalid identifier: " + err.Error(),
		})
	}

	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return nil
	}

	sub := h.registry.Subscribe(ctx.Request().Context(), realtime.CourierGroup(courierID))

	go h.writePump(conn, sub)
	go h.courierReadPump(conn, sub, courierID)

	return nil
}

// SubscribeRestaurant streams ETA updates for every order of one restaurant.
func (h *Handler) SubscribeRestaurant(ctx echo.Context) error {
	return h.subscribe(ctx, ctx.Param("restaurantID"), realtime.RestaurantGroup)
}

func (h *Handler) subscribe(
	ctx echo.Context,
	rawID string,
	group func(kernel.UUID) realtime.GroupKey,
) error {
	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"message": "invalid identifier: " + err.Error(),
		})
	}

	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		return nil
	}

	sub := h.registry.Subscribe(ctx.Request().Context(), group(id))

	go h.writePump(conn, sub)
	go h.readPump(conn, sub)

	return nil
}

// writePump forwards subscription messages to the socket and keeps the
// connection alive with pings. It owns all writes on the connection.
func (h *Handler) writePump(conn *websocket.Conn, sub *realtime.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "registry shutting down"))
				return
			}

			payload, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("marshal update", "group", sub.Group(), "error", err)
				continue
			}
			if err = conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames so pongs and close frames are processed.
// Subscribers do not send data; anything else received is discarded.
func (h *Handler) readPump(conn *websocket.Conn, sub *realtime.Subscription) {
	defer func() {
		sub.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("connection closed", "group", sub.Group(), "error", err)
			}
			return
		}
	}
}

// positionTick is the inbound frame format on a courier socket.
type positionTick struct {
	Sequence   int64     `json:"sequence"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
}

// courierReadPump handles inbound frames on a courier socket: each text
// frame is a position tick relayed into the system. Malformed ticks are
// logged and skipped; the connection stays up.
func (h *Handler) courierReadPump(
	conn *websocket.Conn,
	sub *realtime.Subscription,
	courierID kernel.UUID,
) {
	defer func() {
		sub.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("courier connection closed",
					"courier_id", courierID.String(), "error", err)
			}
			return
		}

		// Ticks also refresh the read deadline: an actively reporting
		// courier is alive whether or not pongs arrive.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := h.relayTick(courierID, payload); err != nil {
			h.logger.Warn("discarding position tick",
				"courier_id", courierID.String(), "error", err)
		}
	}
}

func (h *Handler) relayTick(courierID kernel.UUID, payload []byte) error {
	var tick positionTick
	if err := json.Unmarshal(payload, &tick); err != nil {
		return err
	}

	point, err := kernel.NewGeoPoint(tick.Lat, tick.Lng)
	if err != nil {
		return err
	}
	position, err := kernel.NewPosition(point, tick.Heading, tick.RecordedAt)
	if err != nil {
		return err
	}
	cmd, err := commands.NewReportPositionCommand(courierID, tick.Sequence, position)
	if err != nil {
		return err
	}

	_, err = h.reportPosition.Handle(context.Background(), cmd)
	return err
}
