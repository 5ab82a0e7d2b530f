package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/model"
	"github.com/anicoll/linky-integration/internal/pkg/tic"
	"github.com/anicoll/linky-integration/pkg/api"
)

var _ api.ServerInterface = (*server)(nil)

var (
	errNotFound      = errors.New("entity not found")
	errNoHistory     = errors.New("history is not enabled")
	errNoStream      = errors.New("stream is not enabled")
	errInvalidWindow = errors.New("invalid time window")
)

// historyWindow is used for whichever bound of the history window is missing.
const historyWindow = 48 * time.Hour

type readerStatus interface {
	IsConnected() bool
	HasReadFullFrame() bool
	Identification() tic.Identification
}

type stateStore interface {
	Latest() model.EntityStates
	Get(uniqueID string) (model.EntityState, bool)
}

type historyStore interface {
	GetStates(ctx context.Context, uniqueID string, from, to *time.Time) (model.EntityStates, error)
	GetLatestStates(ctx context.Context) (model.EntityStates, error)
}

type server struct {
	reader  readerStatus
	states  stateStore
	history historyStore
	stream  http.Handler
	logger  *zap.Logger
}

// New wires the status API. history and stream may be nil.
func New(reader readerStatus, states stateStore, history historyStore, stream http.Handler) *server {
	return &server{reader: reader, states: states, history: history, stream: stream, logger: zap.L()}
}

func (s *server) Router() http.Handler {
	return api.HandlerWithOptions(s, api.GorillaServerOptions{
		Middlewares: []api.MiddlewareFunc{LoggingMiddleware},
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			handleError(w, http.StatusBadRequest, err)
		},
	})
}

func (s *server) GetHealth(w http.ResponseWriter, r *http.Request) {
	ident := s.reader.Identification()
	status := http.StatusOK
	if !s.reader.IsConnected() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, api.HealthResponse{
		Connected:     s.reader.IsConnected(),
		FullFrameRead: s.reader.HasReadFullFrame(),
		Serial:        ident.Serial,
		Manufacturer:  ident.Constructor,
		Model:         ident.Type,
	})
}

// ListEntities serves the publisher cache, or the last stored states while
// the cache is still empty after a restart.
func (s *server) ListEntities(w http.ResponseWriter, r *http.Request) {
	states := s.states.Latest()
	if len(states) == 0 && s.history != nil {
		var err error
		states, err = s.history.GetLatestStates(r.Context())
		if err != nil {
			s.logger.Error("failed to read latest states", zap.Error(err))
			handleError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toAPIStates(states))
}

func (s *server) GetEntity(w http.ResponseWriter, r *http.Request, id api.EntityID) {
	state, ok := s.states.Get(id)
	if !ok {
		handleError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, toAPIState(state, 0))
}

func (s *server) GetEntityHistory(w http.ResponseWriter, r *http.Request, id api.EntityID, params api.GetEntityHistoryParams) {
	if s.history == nil {
		handleError(w, http.StatusNotImplemented, errNoHistory)
		return
	}
	from, to, err := window(params, time.Now())
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	states, err := s.history.GetStates(r.Context(), id, from, to)
	if err != nil {
		s.logger.Error("failed to read history", zap.String("entity", id), zap.Error(err))
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIStates(states))
}

func (s *server) GetStream(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		handleError(w, http.StatusNotImplemented, errNoStream)
		return
	}
	s.stream.ServeHTTP(w, r)
}

func (s *server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	swagger, err := api.GetSwagger()
	if err != nil {
		s.logger.Error("failed to load the api document", zap.Error(err))
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, swagger)
}

// window fills a missing bound from the other one. No bounds at all is left
// to the store's default.
func window(params api.GetEntityHistoryParams, now time.Time) (*time.Time, *time.Time, error) {
	from, to := params.From, params.To
	switch {
	case from == nil && to == nil:
		return nil, nil, nil
	case from == nil:
		f := to.Add(-historyWindow)
		from = &f
	case to == nil:
		to = &now
	}
	if to.Before(*from) {
		return nil, nil, fmt.Errorf("%w: to is before from", errInvalidWindow)
	}
	return from, to, nil
}

func toAPIState(s model.EntityState, _ int) api.EntityState {
	return api.EntityState{
		UniqueId:  s.UniqueID,
		ObjectId:  s.ObjectID,
		Platform:  api.EntityStatePlatform(s.Platform),
		Value:     s.Value,
		Icon:      s.Icon,
		Available: s.Available,
		TimeStamp: s.TimeStamp,
	}
}

func toAPIStates(states model.EntityStates) []api.EntityState {
	return lo.Map(states, toAPIState)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func handleError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}
