package http

import (
	"context"
	"net/http"
	"strconv"

	mw "storeops-borrow/internal/adapter/middleware"
	"storeops-borrow/internal/domain/borrow"
	"storeops-borrow/internal/usecase/approval"
	"storeops-borrow/internal/usecase/confirmation"
	"storeops-borrow/internal/usecase/photo"
	"storeops-borrow/internal/usecase/request"
	"storeops-borrow/internal/usecase/workflow"

	"github.com/labstack/echo/v4"
)

// BorrowService is implemented by workflow.Orchestrator.
type BorrowService interface {
	Create(ctx context.Context, in request.CreateInput) (*borrow.Borrow, error)
	Approve(ctx context.Context, in approval.ApproveInput) (*borrow.Borrow, error)
	Reject(ctx context.Context, in approval.RejectInput) (*borrow.Borrow, error)
	ConfirmPos(ctx context.Context, in confirmation.ConfirmInput) (*borrow.Borrow, error)
	UploadPhoto(ctx context.Context, in photo.UploadInput) (*borrow.Borrow, error)
	Get(ctx context.Context, borrowID string) (*workflow.BorrowView, error)
	List(ctx context.Context, f borrow.ListFilter) ([]borrow.Borrow, error)
}

type BorrowHandler struct{ svc BorrowService }

func NewBorrowHandler(svc BorrowService) *BorrowHandler { return &BorrowHandler{svc: svc} }

const (
	ActionApprove     = "approve"
	ActionReject      = "reject"
	ActionConfirmPos  = "confirm_pos"
	ActionUploadPhoto = "upload_photo"
)

type borrowItemReq struct {
	ProductName string  `json:"productName" validate:"notblank"`
	Category    *string `json:"category"`
	Quantity    int     `json:"quantity"    validate:"gt=0"`
	Unit        *string `json:"unit"`
	Notes       *string `json:"notes"`
}

type createBorrowReq struct {
	FromStoreID      string          `json:"fromStoreId"      validate:"notblank"`
	ToStoreID        string          `json:"toStoreId"        validate:"notblank,nefield=FromStoreID"`
	Items            []borrowItemReq `json:"items"            validate:"required,min=1,dive"`
	Notes            *string         `json:"notes"`
	BorrowerPhotoURL *string         `json:"borrowerPhotoUrl"`
}

// patchBorrowReq is one body for every action; fields irrelevant to the action are ignored.
// Photo references are opaque (URL or storage key). Per-action required fields (side, photoUrl)
// are enforced by the usecases.
type patchBorrowReq struct {
	Action         string  `json:"action"         validate:"required,oneof=approve reject confirm_pos upload_photo"`
	LenderPhotoURL *string `json:"lenderPhotoUrl"`
	Reason         *string `json:"reason"`
	Side           string  `json:"side"           validate:"omitempty,borrowside"`
	PhotoURL       string  `json:"photoUrl"`
}

func (h *BorrowHandler) Create(c echo.Context) error {
	var req createBorrowReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	in := request.CreateInput{
		FromStoreID:      req.FromStoreID,
		ToStoreID:        req.ToStoreID,
		ActorID:          mw.ActorID(c),
		Notes:            req.Notes,
		BorrowerPhotoURL: req.BorrowerPhotoURL,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, request.ItemInput(it))
	}
	b, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BorrowHandler) Get(c echo.Context) error {
	v, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *BorrowHandler) List(c echo.Context) error {
	f := borrow.ListFilter{StoreID: c.QueryParam("store_id")}
	if s := c.QueryParam("status"); s != "" {
		st, err := borrow.ParseStatus(s)
		if err != nil {
			return writeError(c, err)
		}
		f.Status = &st
	}
	var err error
	if f.Limit, err = intParam(c, "limit"); err != nil {
		return writeError(c, err)
	}
	if f.Offset, err = intParam(c, "offset"); err != nil {
		return writeError(c, err)
	}

	list, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"borrows": list, "count": len(list)})
}

// Patch dispatches on body.action.
func (h *BorrowHandler) Patch(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param", Kind: string(borrow.KindInvalidArgument)})
	}
	var req patchBorrowReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()
	actor := mw.ActorID(c)
	var (
		b   *borrow.Borrow
		err error
	)
	switch req.Action {
	case ActionApprove:
		b, err = h.svc.Approve(ctx, approval.ApproveInput{BorrowID: id, ActorID: actor, LenderPhotoURL: req.LenderPhotoURL})
	case ActionReject:
		b, err = h.svc.Reject(ctx, approval.RejectInput{BorrowID: id, ActorID: actor, Reason: req.Reason})
	case ActionConfirmPos:
		b, err = h.svc.ConfirmPos(ctx, confirmation.ConfirmInput{BorrowID: id, Side: req.Side, ActorID: actor})
	case ActionUploadPhoto:
		b, err = h.svc.UploadPhoto(ctx, photo.UploadInput{BorrowID: id, Side: req.Side, PhotoURL: req.PhotoURL, ActorID: actor})
	default:
		return writeError(c, borrow.NewInvalidArgumentError("unknown action "+req.Action))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, borrow.NewInvalidArgumentError(name + " must be a non-negative integer")
	}
	return n, nil
}
