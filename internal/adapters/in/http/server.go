// Package http exposes the tracking engine over REST. Event producers push
// lifecycle events and position ticks here; client applications poll the
// snapshot endpoints when they are not on a live connection.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	startTrackingHandler  commands.StartTrackingCommandHandler
	submitEventHandler    commands.SubmitOrderEventCommandHandler
	recalculateHandler    commands.RecalculateETACommandHandler
	reportPositionHandler commands.ReportPositionCommandHandler

	// Query handlers
	getLiveETAHandler          queries.GetLiveETAQueryHandler
	getETAHistoryHandler       queries.GetETAHistoryQueryHandler
	getOrderEventsHandler      queries.GetOrderEventsQueryHandler
	calculateInitialETAHandler queries.CalculateInitialETAQueryHandler
}

// NewServer creates an HTTP server with the required command and query handlers.
func NewServer(
	startTrackingHandler commands.StartTrackingCommandHandler,
	submitEventHandler commands.SubmitOrderEventCommandHandler,
	recalculateHandler commands.RecalculateETACommandHandler,
	reportPositionHandler commands.ReportPositionCommandHandler,
	getLiveETAHandler queries.GetLiveETAQueryHandler,
	getETAHistoryHandler queries.GetETAHistoryQueryHandler,
	getOrderEventsHandler queries.GetOrderEventsQueryHandler,
	calculateInitialETAHandler queries.CalculateInitialETAQueryHandler,
) *Server {
	return &Server{
		startTrackingHandler:       startTrackingHandler,
		submitEventHandler:         submitEventHandler,
		recalculateHandler:         recalculateHandler,
		reportPositionHandler:      reportPositionHandler,
		getLiveETAHandler:          getLiveETAHandler,
		getETAHistoryHandler:       getETAHistoryHandler,
		getOrderEventsHandler:      getOrderEventsHandler,
		calculateInitialETAHandler: calculateInitialETAHandler,
	}
}

// RegisterRoutes mounts all endpoints under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/tracking", s.StartTracking)
	api.POST("/orders/:orderID/events", s.SubmitEvent)
	api.POST("/orders/:orderID/events/:kind", s.SubmitEventOfKind)
	api.POST("/orders/:orderID/recalculate", s.Recalculate)
	api.GET("/orders/:orderID/eta", s.GetLiveETA)
	api.GET("/orders/:orderID/eta/history", s.GetETAHistory)
	api.GET("/orders/:orderID/events", s.GetOrderEvents)
	api.POST("/eta/preview", s.PreviewETA)
	api.POST("/couriers/:courierID/position", s.ReportPosition)
}

// StartTracking handles POST /api/v1/tracking - opens a tracking record.
func (s *Server) StartTracking(ctx echo.Context) error {
	var req StartTrackingRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order_id: "+err.Error())
	}
	restaurantID, err := kernel.UUIDFromString(req.RestaurantID)
	if err != nil {
		return badRequest(ctx, "Invalid restaurant_id: "+err.Error())
	}
	restaurantLocation, err := kernel.NewGeoPoint(req.RestaurantLocation.Lat, req.RestaurantLocation.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid restaurant_location: "+err.Error())
	}
	customerLocation, err := kernel.NewGeoPoint(req.CustomerLocation.Lat, req.CustomerLocation.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid customer_location: "+err.Error())
	}

	cmd, err := commands.NewStartTrackingCommand(orderID, restaurantID, restaurantLocation, customerLocation)
	if err != nil {
		return badRequest(ctx, "Invalid tracking data: "+err.Error())
	}

	if err = s.startTrackingHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusCreated)
}

// SubmitEvent handles POST /api/v1/orders/:orderID/events - applies one
// lifecycle event with the kind in the body. Duplicates return 200 with the
// current committed estimate.
func (s *Server) SubmitEvent(ctx echo.Context) error {
	var req SubmitEventRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	return s.submitEvent(ctx, req.Kind, req)
}

// SubmitEventOfKind handles POST /api/v1/orders/:orderID/events/:kind - the
// per-kind form of event submission used by producers with one endpoint per
// lifecycle transition.
func (s *Server) SubmitEventOfKind(ctx echo.Context) error {
	var req SubmitEventRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	return s.submitEvent(ctx, ctx.Param("kind"), req)
}

func (s *Server) submitEvent(ctx echo.Context, kind string, req SubmitEventRequest) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	cmd, err := commands.NewSubmitOrderEventCommand(
		order.EventKind(kind), orderID, req.Timestamp, req.Metadata)
	if err != nil {
		return badRequest(ctx, "Invalid event: "+err.Error())
	}

	result, err := s.submitEventHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, SubmitEventResponse{
		Status:                result.Status.String(),
		EstimatedDeliveryTime: result.EstimatedDeliveryTime,
		EstimateSeconds:       result.EstimateSeconds,
		Duplicate:             result.Duplicate,
	})
}

// Recalculate handles POST /api/v1/orders/:orderID/recalculate - refreshes
// the estimate from current routing data and courier position.
func (s *Server) Recalculate(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	cmd, err := commands.NewRecalculateETACommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid recalculation request: "+err.Error())
	}

	result, err := s.recalculateHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, RecalculateResponse{
		Status:                result.Status.String(),
		EstimatedDeliveryTime: result.EstimatedDeliveryTime,
		EstimateSeconds:       result.EstimateSeconds,
		Changed:               result.Changed,
	})
}

// GetLiveETA handles GET /api/v1/orders/:orderID/eta - the current snapshot.
func (s *Server) GetLiveETA(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	query, err := queries.NewGetLiveETAQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	snapshot, err := s.getLiveETAHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := LiveETAResponse{
		OrderID:               snapshot.OrderID.String(),
		Status:                snapshot.Status.String(),
		EstimatedDeliveryTime: snapshot.EstimatedDeliveryTime,
		RiderNearby:           snapshot.RiderNearby,
		Version:               snapshot.Version,
	}
	if snapshot.CourierID != nil {
		courierID := snapshot.CourierID.String()
		response.CourierID = &courierID
	}
	if snapshot.LastKnownPosition != nil {
		response.LastKnownPosition = &PositionBody{
			Lat:        snapshot.LastKnownPosition.Latitude,
			Lng:        snapshot.LastKnownPosition.Longitude,
			Heading:    snapshot.LastKnownPosition.Heading,
			RecordedAt: snapshot.LastKnownPosition.RecordedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetETAHistory handles GET /api/v1/orders/:orderID/eta/history - how the
// estimate evolved, paginated via ?page= and ?page_size=.
func (s *Server) GetETAHistory(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	page, err := queryInt(ctx, "page", 1)
	if err != nil {
		return badRequest(ctx, "Invalid page: "+err.Error())
	}
	pageSize, err := queryInt(ctx, "page_size", 0)
	if err != nil {
		return badRequest(ctx, "Invalid page_size: "+err.Error())
	}

	query, err := queries.NewGetETAHistoryQuery(orderID, page, pageSize)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	result, err := s.getETAHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	entries := make([]ETAHistoryEntry, len(result.Entries))
	for i, entry := range result.Entries {
		entries[i] = ETAHistoryEntry{
			Kind:                  string(entry.Kind),
			OccurredAt:            entry.OccurredAt,
			EstimatedDeliveryTime: entry.EstimatedDeliveryTime,
		}
	}

	return ctx.JSON(http.StatusOK, ETAHistoryResponse{
		Entries:  entries,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

// GetOrderEvents handles GET /api/v1/orders/:orderID/events - the applied
// event log with metadata.
func (s *Server) GetOrderEvents(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	query, err := queries.NewGetOrderEventsQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	events, err := s.getOrderEventsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]OrderEventBody, len(events))
	for i, event := range events {
		response[i] = OrderEventBody{
			Kind:                  string(event.Kind),
			OccurredAt:            event.OccurredAt,
			EstimatedDeliveryTime: event.EstimatedDeliveryTime,
			Metadata:              event.Metadata,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// PreviewETA handles POST /api/v1/eta/preview - estimates delivery time for
// an order that is not tracked yet.
func (s *Server) PreviewETA(ctx echo.Context) error {
	var req ETAPreviewRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	restaurantLocation, err := kernel.NewGeoPoint(req.RestaurantLocation.Lat, req.RestaurantLocation.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid restaurant_location: "+err.Error())
	}
	customerLocation, err := kernel.NewGeoPoint(req.CustomerLocation.Lat, req.CustomerLocation.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid customer_location: "+err.Error())
	}

	query, err := queries.NewCalculateInitialETAQuery(restaurantLocation, customerLocation, req.PrepSeconds)
	if err != nil {
		return badRequest(ctx, "Invalid preview request: "+err.Error())
	}

	result, err := s.calculateInitialETAHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ETAPreviewResponse{
		EstimateSeconds:       result.EstimateSeconds,
		EstimatedDeliveryTime: result.EstimatedDeliveryTime,
	})
}

// ReportPosition handles POST /api/v1/couriers/:courierID/position - ingests
// one position tick. Stale ticks are acknowledged with dropped set, not an
// error, so simple producers do not retry them.
func (s *Server) ReportPosition(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierID"))
	if err != nil {
		return badRequest(ctx, "Invalid courier ID: "+err.Error())
	}

	var req ReportPositionRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid coordinates: "+err.Error())
	}
	position, err := kernel.NewPosition(point, req.Heading, req.RecordedAt)
	if err != nil {
		return badRequest(ctx, "Invalid position: "+err.Error())
	}

	cmd, err := commands.NewReportPositionCommand(courierID, req.Sequence, position)
	if err != nil {
		return badRequest(ctx, "Invalid position tick: "+err.Error())
	}

	result, err := s.reportPositionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusAccepted, ReportPositionResponse{
		Applied: result.Applied,
		Dropped: result.Dropped,
	})
}

func queryInt(ctx echo.Context, name string, fallback int) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps application and domain errors onto HTTP statuses. Unknown
// orders are 404, rejected transitions and terminal orders are 409, bad
// values are 400, everything else is a 500.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrTrackIsTerminal),
		errors.Is(err, order.ErrCourierIDIsMissing):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired):
		status = http.StatusBadRequest
	}

	return ctx.JSON(status, Error{
		Code:    status,
		Message: err.Error(),
	})
}
