package main

import (
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/imkonsowa/restaurants-chat/config"
	"github.com/imkonsowa/restaurants-chat/intentcache"
	"github.com/imkonsowa/restaurants-chat/nlp"
	"github.com/imkonsowa/restaurants-chat/yelp"
)

type Agent struct {
	config   *config.Config
	handler  *Handler
	upgrader websocket.Upgrader
}

func main() {
	cfg := config.LoadConfig()

	pg, err := NewPg(cfg.Postgres.ConnStr())
	if err != nil {
		log.Fatal(err)
	}
	if err := pg.Migrate(); err != nil {
		log.Fatal(err)
	}

	cache, err := intentcache.New(cfg.Cache.File)
	if err != nil {
		log.Fatal(err)
	}

	classifierLLM, err := openai.New(
		openai.WithToken(cfg.OpenAI.APIKey),
		openai.WithModel(cfg.OpenAI.ClassifierModel),
	)
	if err != nil {
		log.Fatal(err)
	}

	extractorLLM, err := openai.New(
		openai.WithToken(cfg.OpenAI.APIKey),
		openai.WithModel(cfg.OpenAI.ExtractorModel),
	)
	if err != nil {
		log.Fatal(err)
	}

	chatLLM, err := openai.New(
		openai.WithToken(cfg.OpenAI.APIKey),
		openai.WithModel(cfg.OpenAI.ChatModel),
	)
	if err != nil {
		log.Fatal(err)
	}

	publisher, err := NewPublisher(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer publisher.Close()

	searchClient := yelp.NewClient(
		cfg.Yelp.APIKey,
		cfg.Yelp.BaseURL,
		time.Duration(cfg.Yelp.TimeoutSeconds)*time.Second,
	)

	handler := NewHandler(
		pg,
		nlp.NewClassifier(classifierLLM, cache),
		nlp.NewExtractor(extractorLLM, cfg.Chat.DefaultLocation),
		chatLLM,
		searchClient,
		publisher,
		time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second,
		cfg.Chat.ResultLimit,
		cfg.Chat.HistoryLimit,
	)

	agent := &Agent{
		config:   cfg,
		handler:  handler,
		upgrader: websocket.Upgrader{},
	}

	if err := agent.Run(); err != nil {
		log.Fatalf("failed to run the agent: %v", err)
	}
}

func (a *Agent) Run() error {
	r := gin.Default()

	r.StaticFile("/", "web/index.html")

	r.POST("/chat", func(ctx *gin.Context) {
		var req ChatRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Query == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		resp, err := a.handler.Respond(ctx.Request.Context(), req, nil)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, resp)
	})

	r.GET("/chat/ws", func(ctx *gin.Context) {
		query, _ := ctx.GetQuery("query")
		sessionID, _ := ctx.GetQuery("session_id")
		userID, _ := ctx.GetQuery("user_id")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		c, err := a.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		defer c.Close()

		req := ChatRequest{Query: query, SessionID: sessionID, UserID: userID}
		resultChan := a.handler.ChatStream(ctx.Request.Context(), req)
		for {
			select {
			case <-ctx.Request.Context().Done():
				return
			case result := <-resultChan:
				if result == nil {
					return
				}
				if result.Err != nil {
					if errors.Is(result.Err, io.EOF) {
						return
					}
					if err := c.WriteJSON(WebSocketsMessage{Type: "error", Data: result.Err.Error()}); err != nil {
						slog.Error("failed to write to ws connection", "error", err)
					}
					return
				}

				if err := c.WriteJSON(result.Msg); err != nil {
					slog.Error("failed to write to ws connection", "error", err)
					return
				}
			}
		}
	})

	r.GET("/wishlist", func(ctx *gin.Context) {
		userID := ctx.DefaultQuery("user_id", defaultUserID)

		rendered, err := a.handler.wishlist.List(ctx.Request.Context(), userID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"msg": rendered})
	})

	r.POST("/wishlist/confirm/:id", func(ctx *gin.Context) {
		id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant id"})
			return
		}

		var req ConfirmRequest
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.UserID == "" {
			req.UserID = defaultUserID
		}

		result, err := a.handler.wishlist.Confirm(ctx.Request.Context(), req.UserID, id, req.Note)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"msg": result.Message})
	})

	r.POST("/restaurants", func(ctx *gin.Context) {
		var restaurants CreateRestaurantsRequest

		if err := ctx.ShouldBindJSON(&restaurants); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := restaurants.Validate(); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := a.handler.pg.CreateRestaurants(ctx.Request.Context(), restaurants.ToModels()); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{"message": "restaurants created successfully"})
	})

	r.GET("/restaurants", func(ctx *gin.Context) {
		restaurants, err := a.handler.pg.ListRestaurants(ctx.Request.Context())
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, restaurants)
	})

	return r.Run(a.config.Server.Address())
}
