package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

// Pagination bounds for history queries.
const (
	HistoryPageSizeDefault = 20
	HistoryPageSizeMax     = 100
)

var ErrGetETAHistoryQueryIsNotConstructed = errors.New(
	"GetETAHistoryQuery must be created via NewGetETAHistoryQuery constructor",
)

// GetETAHistoryQuery retrieves how an order's estimate evolved over time:
// one entry per applied event, in application order, paginated.
type GetETAHistoryQuery struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	page     int
	pageSize int

	guard guard.ConstructorGuard
}

// NewGetETAHistoryQuery creates a paginated history query. Page numbering is
// 1-based; a zero pageSize selects the default.
func NewGetETAHistoryQuery(orderID kernel.UUID, page, pageSize int) (GetETAHistoryQuery, error) {
	q := GetETAHistoryQuery{guard: guard.NewConstructorGuard()}

	if pageSize == 0 {
		pageSize = HistoryPageSizeDefault
	}

	if err := errors.Join(
		q.setOrderID(orderID),
		q.setPage(page),
		q.setPageSize(pageSize),
	); err != nil {
		return GetETAHistoryQuery{}, err
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetETAHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetETAHistoryQueryIsNotConstructed)
}

// OrderID returns the order being queried.
func (q GetETAHistoryQuery) OrderID() kernel.UUID { return q.orderID }

// Page returns the 1-based page number.
func (q GetETAHistoryQuery) Page() int { return q.page }

// PageSize returns the number of entries per page.
func (q GetETAHistoryQuery) PageSize() int { return q.pageSize }

func (q *GetETAHistoryQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

func (q *GetETAHistoryQuery) setPage(page int) error {
	if page < 1 {
		return errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded")
	}
	q.page = page
	return nil
}

func (q *GetETAHistoryQuery) setPageSize(pageSize int) error {
	if pageSize < 1 || pageSize > HistoryPageSizeMax {
		return errs.NewValueIsOutOfRangeError("pageSize", pageSize, 1, HistoryPageSizeMax)
	}
	q.pageSize = pageSize
	return nil
}

// ETAHistoryEntryResponse is one estimate change in the order's timeline.
type ETAHistoryEntryResponse struct {
	Kind                  order.EventKind
	OccurredAt            time.Time
	EstimatedDeliveryTime time.Time
}

// GetETAHistoryQueryResponse is one page of the estimate timeline.
type GetETAHistoryQueryResponse struct {
	Entries  []ETAHistoryEntryResponse
	Total    int64
	Page     int
	PageSize int
}
