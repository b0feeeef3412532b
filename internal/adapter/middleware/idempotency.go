package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderRequestID carries the client-chosen idempotency key (UUID, dashed or 32 hex).
const HeaderRequestID = "Ax-Request-Id"

const storeTimeout = 2 * time.Second

// teeWriter copies the response body so it can be stored for replay.
type teeWriter struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first response for a repeated POST/PATCH with the same Ax-Request-Id
// and body, so a retried confirm_pos gets its original 200 rather than a state_conflict.
// It must run after ActorJWT; keys are scoped per actor and per request path.
func Idempotency(store *ReplayStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodPost && req.Method != http.MethodPatch {
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing " + HeaderRequestID, Kind: "invalid_argument"})
			}
			if _, err := uuid.Parse(reqID); err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid " + HeaderRequestID + " format", Kind: "invalid_argument"})
			}
			actorID := ActorID(c)
			if actorID == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			var body []byte
			if req.Body != nil {
				var err error
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable body", Kind: "invalid_argument"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := hashBody(body)
			// the concrete path, so one request id on two borrows never shares a record
			key := replayKey(req.Method, req.URL.Path, actorID, reqID)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			fresh, cur, err := store.Reserve(ctx, key, hash)
			cancel()
			if err != nil {
				c.Logger().Errorf("idempotency: reserve %s: %v", key, err)
				return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "idempotency store unavailable"})
			}
			if !fresh {
				switch {
				case cur.BodyHash != hash:
					return c.JSON(http.StatusConflict, errorResponse{Error: HeaderRequestID + " reused with a different body"})
				case cur.State == stateDone:
					return c.Blob(cur.Status, echo.MIMEApplicationJSON, cur.Response)
				default:
					return c.JSON(http.StatusConflict, errorResponse{Error: "request is already in progress"})
				}
			}

			res := c.Response()
			tee := &teeWriter{ResponseWriter: res.Writer}
			res.Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the response is already sent; storing it must outlive the request context
			ctx, cancel = context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer cancel()
			if res.Status >= http.StatusInternalServerError {
				if err := store.Release(ctx, key); err != nil {
					c.Logger().Errorf("idempotency: release %s: %v", key, err)
				}
				return nil
			}
			if err := store.Complete(ctx, key, hash, res.Status, tee.buf.Bytes()); err != nil {
				c.Logger().Errorf("idempotency: complete %s: %v", key, err)
			}
			return nil
		}
	}
}
