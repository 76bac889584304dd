// Package api exposes the interaction pipeline over HTTP. Handlers translate
// between JSON and the service layer; the error taxonomy maps to status codes
// here and nowhere else.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/backstory"
	"github.com/unboundedlabs/unbounded/internal/state"
	"github.com/unboundedlabs/unbounded/internal/types"
)

// InteractionService runs conversation turns and reads their results back.
type InteractionService interface {
	Handle(ctx context.Context, characterID, message string) (*types.Interaction, error)
	History(ctx context.Context, characterID string, limit int) ([]types.Interaction, error)
	CurrentState(ctx context.Context, characterID string) (*types.CharacterState, error)
}

// BackstoryService fills in a character's backstory on demand.
type BackstoryService interface {
	Generate(ctx context.Context, characterID string, req backstory.Request) (string, error)
}

// CharacterService creates and loads character profiles.
type CharacterService interface {
	Create(ctx context.Context, c *types.Character) error
	GetByID(ctx context.Context, id string) (*types.Character, error)
}

// StateSeeder seeds the initial state row alongside a new character.
type StateSeeder interface {
	Create(ctx context.Context, s *types.CharacterState) error
}

// Server holds the handler dependencies.
type Server struct {
	characters   CharacterService
	states       StateSeeder
	interactions InteractionService
	backstories  BackstoryService
	now          func() time.Time
}

// NewServer wires a Server around the given services.
func NewServer(characters CharacterService, states StateSeeder, interactions InteractionService, backstories BackstoryService) *Server {
	return &Server{
		characters:   characters,
		states:       states,
		interactions: interactions,
		backstories:  backstories,
		now:          time.Now,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the error taxonomy onto status codes with a stable
// {code, message} body. Unknown errors become opaque 500s.
func writeError(c *gin.Context, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		ge *apperr.GenerationError
		pe *apperr.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, errorBody{Code: ve.Code(), Message: ve.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, errorBody{Code: nf.Code(), Message: nf.Error()})
	case errors.As(err, &ge):
		status := http.StatusBadGateway
		if ge.Kind == apperr.GenerationTimeout {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, errorBody{Code: ge.Code(), Message: "generation backend failed"})
	case errors.As(err, &pe):
		status := http.StatusInternalServerError
		if pe.Kind == apperr.PersistenceConflict {
			status = http.StatusConflict
		}
		slog.Error("persistence failure", "error", err)
		c.JSON(status, errorBody{Code: pe.Code(), Message: "could not persist interaction"})
	default:
		slog.Error("unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody{Code: "internal_error", Message: "internal error"})
	}
}

type createCharacterRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Personality string `json:"personality"`
}

func (s *Server) createCharacter(c *gin.Context) {
	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(c, apperr.Validation("name must not be empty"))
		return
	}

	character := &types.Character{
		UserID:      req.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Personality: req.Personality,
	}
	if err := s.characters.Create(c.Request.Context(), character); err != nil {
		writeError(c, err)
		return
	}

	seed := state.NewDefaultState(character.ID, s.now())
	if err := s.states.Create(c.Request.Context(), &seed); err != nil {
		// The turn pipeline seeds a missing row on first use.
		slog.Warn("failed to seed character state", "character_id", character.ID, "error", err)
	}
	c.JSON(http.StatusCreated, character)
}

func (s *Server) getCharacter(c *gin.Context) {
	character, err := s.characters.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, character)
}

type interactRequest struct {
	Content string `json:"content"`
}

func (s *Server) interact(c *gin.Context) {
	var req interactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	record, err := s.interactions.Handle(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) listInteractions(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			writeError(c, apperr.Validation("limit must be an integer between 1 and 200"))
			return
		}
		limit = n
	}
	history, err := s.interactions.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if history == nil {
		history = []types.Interaction{}
	}
	c.JSON(http.StatusOK, gin.H{"interactions": history})
}

func (s *Server) getState(c *gin.Context) {
	snapshot, err := s.interactions.CurrentState(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type backstoryRequest struct {
	Tone   string   `json:"tone"`
	Length string   `json:"length"`
	Themes []string `json:"themes"`
}

func (s *Server) generateBackstory(c *gin.Context) {
	var req backstoryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.Validation("invalid request body: %v", err))
			return
		}
	}
	content, err := s.backstories.Generate(c.Request.Context(), c.Param("id"), backstory.Request{
		Tone:   req.Tone,
		Length: req.Length,
		Themes: req.Themes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backstory": content})
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	characters := r.Group("/characters")
	{
		characters.POST("", s.createCharacter)
		characters.GET("/:id", s.getCharacter)
		characters.POST("/:id/interact", s.interact)
		characters.GET("/:id/interactions", s.listInteractions)
		characters.GET("/:id/state", s.getState)
		characters.POST("/:id/backstory", s.generateBackstory)
	}

	return r
}
